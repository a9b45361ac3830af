package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// DividendEventRepository provides data access methods for the dividend_event
// table. It is the only persistence surface the reconciliation and forecasting
// paths use; callers never issue raw queries against the table.
type DividendEventRepository struct {
	db *sql.DB
}

// NewDividendEventRepository creates a new DividendEventRepository with the
// provided database connection.
func NewDividendEventRepository(db *sql.DB) *DividendEventRepository {
	return &DividendEventRepository{db: db}
}

// FindEvent looks up a stored event by its identity key (symbol, ex_date,
// amount). The symbol is compared case-normalized (uppercase). Returns
// (nil, nil) when no matching row exists.
func (r *DividendEventRepository) FindEvent(ctx context.Context, symbol string, exDate time.Time, amount float64) (*model.DividendEvent, error) {
	query := `
		SELECT id, symbol, ex_date, pay_date, record_date, amount, source, created_at
		FROM dividend_event
		WHERE symbol = ? AND amount = ?
	`
	args := []any{strings.ToUpper(symbol), amount}

	if exDate.IsZero() {
		query += ` AND ex_date IS NULL`
	} else {
		query += ` AND ex_date = ?`
		args = append(args, formatDate(exDate))
	}

	row := r.db.QueryRowContext(ctx, query, args...)

	event, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_event table: %w", err)
	}

	return &event, nil
}

// InsertEvent inserts a new dividend event row. The symbol is stored
// uppercase so rows differing only by case cannot accumulate.
func (r *DividendEventRepository) InsertEvent(ctx context.Context, event model.DividendEvent) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO dividend_event (id, symbol, ex_date, pay_date, record_date, amount, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	source := event.Source
	if source == "" {
		source = "unknown"
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		strings.ToUpper(event.Symbol),
		nullableDate(event.ExDate),
		nullableDate(event.PayDate),
		nullableDate(event.RecordDate),
		event.Amount,
		source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert into dividend_event table: %w", err)
	}

	return id, nil
}

// UpdateEventDates fills missing pay_date and/or record_date on an existing
// row. Only NULL columns are written: a field once filled is never overwritten
// or nulled out by a later call. Amount and source are immutable after insert
// and are not touched here.
func (r *DividendEventRepository) UpdateEventDates(ctx context.Context, id string, payDate, recordDate time.Time) error {
	query := `
		UPDATE dividend_event
		SET pay_date = COALESCE(pay_date, ?),
		    record_date = COALESCE(record_date, ?)
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, nullableDate(payDate), nullableDate(recordDate), id)
	if err != nil {
		return fmt.Errorf("failed to update dividend_event dates: %w", err)
	}

	return nil
}

// ListEventsForSymbol retrieves all stored events for a symbol ordered by
// ex_date ascending (NULL ex_dates first). Returns an empty slice when the
// symbol has no history.
func (r *DividendEventRepository) ListEventsForSymbol(ctx context.Context, symbol string) ([]model.DividendEvent, error) {
	query := `
		SELECT id, symbol, ex_date, pay_date, record_date, amount, source, created_at
		FROM dividend_event
		WHERE symbol = ?
		ORDER BY ex_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, strings.ToUpper(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_event table: %w", err)
	}
	defer rows.Close()

	events := []model.DividendEvent{}

	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend_event table results: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_event table: %w", err)
	}

	return events, nil
}

// ListRecentEventsForSymbol retrieves up to limit events for a symbol ordered
// by ex_date descending. Used for trailing-window sustainability scoring.
func (r *DividendEventRepository) ListRecentEventsForSymbol(ctx context.Context, symbol string, limit int) ([]model.DividendEvent, error) {
	query := `
		SELECT id, symbol, ex_date, pay_date, record_date, amount, source, created_at
		FROM dividend_event
		WHERE symbol = ? AND ex_date IS NOT NULL
		ORDER BY ex_date DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_event table: %w", err)
	}
	defer rows.Close()

	events := []model.DividendEvent{}

	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend_event table results: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_event table: %w", err)
	}

	return events, nil
}

// scanEvent maps one dividend_event row onto a model.DividendEvent. The scan
// argument abstracts over *sql.Row and *sql.Rows.
func scanEvent(scan func(dest ...any) error) (model.DividendEvent, error) {
	var event model.DividendEvent
	var exDate, payDate, recordDate, source, createdAt sql.NullString

	err := scan(
		&event.ID,
		&event.Symbol,
		&exDate,
		&payDate,
		&recordDate,
		&event.Amount,
		&source,
		&createdAt,
	)
	if err != nil {
		return model.DividendEvent{}, err
	}

	if exDate.Valid {
		if event.ExDate, err = ParseTime(exDate.String); err != nil {
			return model.DividendEvent{}, err
		}
	}
	if payDate.Valid {
		if event.PayDate, err = ParseTime(payDate.String); err != nil {
			return model.DividendEvent{}, err
		}
	}
	if recordDate.Valid {
		if event.RecordDate, err = ParseTime(recordDate.String); err != nil {
			return model.DividendEvent{}, err
		}
	}
	if source.Valid {
		event.Source = source.String
	}
	if createdAt.Valid {
		if event.CreatedAt, err = ParseTime(createdAt.String); err != nil {
			return model.DividendEvent{}, err
		}
	}

	return event, nil
}

// nullableDate converts a possibly-zero time into a driver value: NULL for
// zero, "2006-01-02" otherwise.
func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatDate(t)
}
