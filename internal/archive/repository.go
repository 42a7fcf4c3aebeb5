// Package archive maintains an optional relational index over the inbox:
// one row per submission outcome, queryable long after the console feed
// scrolled away. The files in the inbox stay the source of truth.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "bodgate/pkg/errors"
)

type Record struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Client     string    `json:"client"`
	Status     int       `json:"status"`
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason,omitempty"`
	Bytes      int       `json:"bytes"`
	Endpoint   string    `json:"endpoint"`
	XMLPath    string    `json:"xml_path"`
	MetaPath   string    `json:"meta_path"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	CountByStatus(ctx context.Context) (map[int]int, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()

	query := `
		INSERT INTO submissions (id, received_at, client, status, order_id, reason, bytes, endpoint, xml_path, meta_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ReceivedAt, rec.Client, rec.Status, rec.OrderID,
		rec.Reason, rec.Bytes, rec.Endpoint, rec.XMLPath, rec.MetaPath, rec.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("submission %s already indexed", rec.ID))
		}
		return fmt.Errorf("failed to index submission: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, received_at, client, status, order_id, reason, bytes, endpoint, xml_path, meta_path, created_at
		FROM submissions
		ORDER BY received_at DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.ReceivedAt, &rec.Client, &rec.Status, &rec.OrderID,
			&rec.Reason, &rec.Bytes, &rec.Endpoint, &rec.XMLPath, &rec.MetaPath, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission rows: %w", err)
	}

	return records, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[int]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM submissions
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate count rows: %w", err)
	}

	return counts, nil
}
