package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/store"
)

func deliveriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Export the quiz-result email delivery log as JSON",
		RunE:  runDeliveries,
	}
	f := cmd.Flags()
	f.String("db", "auditor.db", "SQLite database path")
	f.String("id", "", "Print a single delivery by id")
	f.String("status", "", "Only include deliveries with this status (sent, failed)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(f)
	return cmd
}

func runDeliveries(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	status := model.DeliveryStatus(v.GetString("status"))
	switch status {
	case "", model.DeliverySent, model.DeliveryFailed:
	default:
		return fmt.Errorf("unknown delivery status %q", status)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if id := v.GetString("id"); id != "" {
		d, err := db.GetDelivery(id)
		if err != nil {
			return fmt.Errorf("get delivery %s: %w", id, err)
		}
		return writeJSON(v.GetString("output"), d)
	}

	export, err := db.ExportDeliveries()
	if err != nil {
		return fmt.Errorf("export deliveries: %w", err)
	}
	if status != "" {
		kept := make([]model.Delivery, 0, len(export.Deliveries))
		for _, d := range export.Deliveries {
			if d.Status == status {
				kept = append(kept, d)
			}
		}
		export.Deliveries = kept
		export.Count = len(kept)
	}

	return writeJSON(v.GetString("output"), export)
}
