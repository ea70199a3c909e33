package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	appI18n "github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/report"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers file and print the audit result as JSON",
		Long: `Reads {"plan": "...", "answers": {...}} from a file or stdin and prints
the computed audit result.`,
		RunE: runScore,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Answers JSON file (- for stdin)")
	f.StringP("plan", "p", "", "Plan override (solo, pro, enterprise)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addEngineFlags(f)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the HTML audit report for a report request file",
		Long: `Reads a report request (the body accepted by POST /api/audit/report)
from a file or stdin and writes the printable HTML report.`,
		RunE: runReport,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Report request JSON file (- for stdin)")
	f.StringP("output", "o", "report.html", "Output file path (- for stdout)")
	addEngineFlags(f)
	return cmd
}

func questionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the questions of a plan as JSON",
		RunE:  runQuestions,
	}
	f := cmd.Flags()
	f.StringP("plan", "p", string(model.PlanSolo), "Plan (solo, pro, enterprise)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addEngineFlags(f)
	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	engine, _, err := loadEngine(v)
	if err != nil {
		return err
	}

	data, err := readInput(v.GetString("input"))
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	var req model.ScoreRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse answers: %w", err)
	}
	if p := v.GetString("plan"); p != "" {
		req.Plan = model.Plan(p)
	}
	if req.Plan == "" {
		req.Plan = model.PlanSolo
	}
	if !req.Plan.Valid() {
		slog.Warn("unknown plan, no question will be scored", "plan", req.Plan)
	}

	return writeJSON(v.GetString("output"), engine.Calculate(req.Answers, req.Plan))
}

func runReport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	engine, _, err := loadEngine(v)
	if err != nil {
		return err
	}

	data, err := readInput(v.GetString("input"))
	if err != nil {
		return fmt.Errorf("read report request: %w", err)
	}
	var req model.ReportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse report request: %w", err)
	}

	res := report.FromRequest(engine, req)
	ctx := appI18n.WithLang(context.Background(), v.GetString("lang"))
	html, err := report.Render(ctx, res, report.OptionsFromRequest(req))
	if err != nil {
		return err
	}

	out := v.GetString("output")
	if err := writeOutput(out, html); err != nil {
		return err
	}
	slog.Info("report written", "output", out, "global_score", res.GlobalScore, "risk_level", res.RiskLevel)
	return nil
}

func runQuestions(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	engine, _, err := loadEngine(v)
	if err != nil {
		return err
	}
	plan := model.Plan(v.GetString("plan"))
	if !plan.Valid() {
		return fmt.Errorf("unknown plan %q", plan)
	}

	return writeJSON(v.GetString("output"), engine.Bank().Catalog(plan))
}
