package model

import "time"

// DeliveryStatus is the outcome of a quiz-result email attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery records one quiz-result email attempt.
type Delivery struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	RiskLevel      string         `json:"risk_level"`
	RiskPercentage float64        `json:"risk_percentage"`
	Findings       int            `json:"findings"`
	Status         DeliveryStatus `json:"status"`
	ProviderID     string         `json:"provider_id,omitempty"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ServerInfo describes the configuration of the last server run.
type ServerInfo struct {
	BankVersion  string `json:"bank_version"`
	BankSource   string `json:"bank_source"`
	PolicySource string `json:"policy_source"`
	StartedAt    string `json:"started_at"`
}

// DeliveryExport is the top-level JSON structure for the delivery log export.
type DeliveryExport struct {
	ExportedAt time.Time  `json:"exported_at"`
	Server     ServerInfo `json:"server"`
	Count      int        `json:"count"`
	Sent       int        `json:"sent"`
	Failed     int        `json:"failed"`
	Deliveries []Delivery `json:"deliveries"`
}
