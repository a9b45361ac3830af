package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
)

// SettingRepository provides data access methods for the system_setting
// table, the storage for provider credentials and other operational knobs.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new SettingRepository with the provided
// database connection.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetSetting retrieves the value stored under key. Returns
// apperrors.ErrSettingNotFound when the key does not exist.
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string

	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM system_setting WHERE "key" = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query system_setting table: %w", err)
	}

	return value, nil
}

// SetSetting upserts the value stored under key.
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO system_setting (id, "key", value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT("key") DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		key,
		value,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert system_setting table: %w", err)
	}

	return nil
}
