package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/dbx"
)

type Repository interface {
	Insert(ctx context.Context, e Event) error
	List(ctx context.Context, limit int) ([]Event, error)
	Prune(ctx context.Context, keep int) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, type, address, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, string(e.Type), e.Address, e.Detail, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert event[%s]: %w", e.Type, err)
	}
	return nil
}

// List returns the newest events first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, address, detail, created_at
		FROM events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var (
			e   Event
			typ string
			ms  int64
		)
		if err := rows.Scan(&e.ID, &typ, &e.Address, &e.Detail, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Type = Type(typ)
		e.CreatedAt = time.UnixMilli(ms).UTC()
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return result, nil
}

// Prune drops everything but the newest keep events.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM events
		WHERE id NOT IN (SELECT id FROM events ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune events: %w", err)
	}
	return nil
}
