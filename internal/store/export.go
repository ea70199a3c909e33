package store

import (
	"fmt"
	"time"

	"github.com/aiact-formation/auditor/internal/model"
)

// ExportDeliveries builds the export document for the whole delivery log.
func (s *Store) ExportDeliveries() (model.DeliveryExport, error) {
	deliveries, err := s.ListDeliveries("")
	if err != nil {
		return model.DeliveryExport{}, fmt.Errorf("list deliveries: %w", err)
	}
	info, err := s.GetServerInfo()
	if err != nil {
		return model.DeliveryExport{}, fmt.Errorf("get server info: %w", err)
	}

	out := model.DeliveryExport{
		ExportedAt: time.Now().UTC(),
		Server:     info,
		Count:      len(deliveries),
		Deliveries: deliveries,
	}
	if out.Deliveries == nil {
		out.Deliveries = []model.Delivery{}
	}
	for _, d := range deliveries {
		switch d.Status {
		case model.DeliverySent:
			out.Sent++
		case model.DeliveryFailed:
			out.Failed++
		}
	}
	return out, nil
}
