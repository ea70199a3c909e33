package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aiact-formation/auditor/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		risk_level TEXT NOT NULL DEFAULT '',
		risk_percentage REAL NOT NULL DEFAULT 0,
		findings INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		provider_id TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordDelivery stores an email attempt. ID and CreatedAt are assigned
// when empty.
func (s *Store) RecordDelivery(d model.Delivery) (model.Delivery, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO deliveries (id, email, risk_level, risk_percentage, findings, status, provider_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Email, d.RiskLevel, d.RiskPercentage, d.Findings, d.Status, d.ProviderID, d.Error, d.CreatedAt,
	)
	if err != nil {
		return d, fmt.Errorf("insert delivery: %w", err)
	}
	return d, nil
}

// GetDelivery returns a delivery by ID.
func (s *Store) GetDelivery(id string) (model.Delivery, error) {
	var d model.Delivery
	err := s.db.QueryRow(
		`SELECT id, email, risk_level, risk_percentage, findings, status, provider_id, error, created_at
		 FROM deliveries WHERE id = ?`, id,
	).Scan(&d.ID, &d.Email, &d.RiskLevel, &d.RiskPercentage, &d.Findings, &d.Status, &d.ProviderID, &d.Error, &d.CreatedAt)
	return d, err
}

// ListDeliveries returns deliveries, newest first. An empty status means
// every status.
func (s *Store) ListDeliveries(status model.DeliveryStatus) ([]model.Delivery, error) {
	query := `SELECT id, email, risk_level, risk_percentage, findings, status, provider_id, error, created_at
		FROM deliveries WHERE 1=1`
	var args []any
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var deliveries []model.Delivery
	for rows.Next() {
		var d model.Delivery
		if err := rows.Scan(&d.ID, &d.Email, &d.RiskLevel, &d.RiskPercentage, &d.Findings, &d.Status, &d.ProviderID, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// DeliveryCount returns the number of deliveries with the given status,
// or all deliveries when status is empty.
func (s *Store) DeliveryCount(status model.DeliveryStatus) (int, error) {
	query := `SELECT COUNT(*) FROM deliveries`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	var count int
	err := s.db.QueryRow(query, args...).Scan(&count)
	return count, err
}
