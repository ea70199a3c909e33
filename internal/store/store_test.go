package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aiact-formation/auditor/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func recordTestDelivery(t *testing.T, s *Store, email string, status model.DeliveryStatus, at time.Time) model.Delivery {
	t.Helper()
	d, err := s.RecordDelivery(model.Delivery{
		Email:          email,
		RiskLevel:      "high",
		RiskPercentage: 55,
		Findings:       3,
		Status:         status,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("recordTestDelivery: %v", err)
	}
	return d
}

func TestDeliveryCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.DeliveryCount("")
	if err != nil {
		t.Fatalf("DeliveryCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 deliveries, got %d", count)
	}
	list, err := s.ListDeliveries("")
	if err != nil {
		t.Fatalf("ListDeliveries: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	// Insert and retrieve.
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d := recordTestDelivery(t, s, "a@example.com", model.DeliverySent, at)
	if d.ID == "" {
		t.Fatal("expected generated ID")
	}
	got, err := s.GetDelivery(d.ID)
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("expected email 'a@example.com', got %q", got.Email)
	}
	if got.Status != model.DeliverySent {
		t.Errorf("expected status sent, got %q", got.Status)
	}
	if got.Findings != 3 || got.RiskPercentage != 55 {
		t.Errorf("unexpected findings/percentage: %d / %v", got.Findings, got.RiskPercentage)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("expected created_at %v, got %v", at, got.CreatedAt)
	}

	// Not found.
	_, err = s.GetDelivery("missing")
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestRecordDeliveryDefaults(t *testing.T) {
	s := newTestStore(t)

	before := time.Now().UTC().Add(-time.Second)
	d, err := s.RecordDelivery(model.Delivery{Email: "x@example.com", Status: model.DeliveryFailed, Error: "boom"})
	if err != nil {
		t.Fatalf("RecordDelivery: %v", err)
	}
	if d.CreatedAt.Before(before) {
		t.Errorf("expected CreatedAt to be set to now, got %v", d.CreatedAt)
	}

	got, err := s.GetDelivery(d.ID)
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if got.Error != "boom" {
		t.Errorf("expected error 'boom', got %q", got.Error)
	}

	// Duplicate IDs are rejected.
	if _, err := s.RecordDelivery(d); err == nil {
		t.Error("expected error on duplicate id")
	}
}

func TestListDeliveriesFiltered(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	recordTestDelivery(t, s, "a@example.com", model.DeliverySent, base)
	recordTestDelivery(t, s, "b@example.com", model.DeliveryFailed, base.Add(time.Hour))
	recordTestDelivery(t, s, "c@example.com", model.DeliverySent, base.Add(2*time.Hour))

	tests := []struct {
		status    model.DeliveryStatus
		wantCount int
		wantFirst string
	}{
		{"", 3, "c@example.com"},
		{model.DeliverySent, 2, "c@example.com"},
		{model.DeliveryFailed, 1, "b@example.com"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			list, err := s.ListDeliveries(tt.status)
			if err != nil {
				t.Fatalf("ListDeliveries: %v", err)
			}
			if len(list) != tt.wantCount {
				t.Fatalf("expected %d deliveries, got %d", tt.wantCount, len(list))
			}
			if list[0].Email != tt.wantFirst {
				t.Errorf("expected newest %q, got %q", tt.wantFirst, list[0].Email)
			}
			count, err := s.DeliveryCount(tt.status)
			if err != nil {
				t.Fatalf("DeliveryCount: %v", err)
			}
			if count != tt.wantCount {
				t.Errorf("DeliveryCount = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetMetadata("k", "1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata("k", "2"); err != nil {
		t.Fatalf("SetMetadata overwrite: %v", err)
	}
	v, _ = s.GetMetadata("k")
	if v != "2" {
		t.Errorf("expected '2', got %q", v)
	}

	info := model.ServerInfo{BankVersion: "2025.1", BankSource: "embedded", PolicySource: "embedded", StartedAt: "2026-03-01T09:00:00Z"}
	if err := s.SetServerInfo(info); err != nil {
		t.Fatalf("SetServerInfo: %v", err)
	}
	got, err := s.GetServerInfo()
	if err != nil {
		t.Fatalf("GetServerInfo: %v", err)
	}
	if got != info {
		t.Errorf("GetServerInfo = %+v, want %+v", got, info)
	}
}

func TestExportDeliveries(t *testing.T) {
	s := newTestStore(t)

	exp, err := s.ExportDeliveries()
	if err != nil {
		t.Fatalf("ExportDeliveries: %v", err)
	}
	if exp.Count != 0 || exp.Deliveries == nil {
		t.Fatalf("expected empty non-nil export, got %+v", exp)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	recordTestDelivery(t, s, "a@example.com", model.DeliverySent, base)
	recordTestDelivery(t, s, "b@example.com", model.DeliveryFailed, base.Add(time.Minute))
	recordTestDelivery(t, s, "c@example.com", model.DeliverySent, base.Add(2*time.Minute))
	if err := s.SetServerInfo(model.ServerInfo{BankVersion: "2025.1"}); err != nil {
		t.Fatalf("SetServerInfo: %v", err)
	}

	exp, err = s.ExportDeliveries()
	if err != nil {
		t.Fatalf("ExportDeliveries: %v", err)
	}
	if exp.Count != 3 || exp.Sent != 2 || exp.Failed != 1 {
		t.Errorf("unexpected totals: count=%d sent=%d failed=%d", exp.Count, exp.Sent, exp.Failed)
	}
	if exp.Server.BankVersion != "2025.1" {
		t.Errorf("expected bank version in export, got %q", exp.Server.BankVersion)
	}
	if exp.ExportedAt.IsZero() {
		t.Error("expected ExportedAt to be set")
	}
}
