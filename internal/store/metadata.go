package store

import (
	"database/sql"

	"github.com/aiact-formation/auditor/internal/model"
)

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetServerInfo records what the last server run was configured with.
func (s *Store) SetServerInfo(info model.ServerInfo) error {
	pairs := []struct{ k, v string }{
		{"bank_version", info.BankVersion},
		{"bank_source", info.BankSource},
		{"policy_source", info.PolicySource},
		{"started_at", info.StartedAt},
	}
	for _, p := range pairs {
		if err := s.SetMetadata(p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

// GetServerInfo reads the fields written by SetServerInfo.
func (s *Store) GetServerInfo() (model.ServerInfo, error) {
	var info model.ServerInfo
	var err error

	if info.BankVersion, err = s.GetMetadata("bank_version"); err != nil {
		return info, err
	}
	if info.BankSource, err = s.GetMetadata("bank_source"); err != nil {
		return info, err
	}
	if info.PolicySource, err = s.GetMetadata("policy_source"); err != nil {
		return info, err
	}
	if info.StartedAt, err = s.GetMetadata("started_at"); err != nil {
		return info, err
	}
	return info, nil
}
