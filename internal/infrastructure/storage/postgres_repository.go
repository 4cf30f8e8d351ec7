// Package storage persists reviews, themes and pulses into Postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// PostgresRepository stores pipeline artifacts. All methods are no-ops when
// the repository is constructed without a database handle, which keeps the
// pipeline runnable without persistence.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReviewRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ExistingHashes returns the subset of hashes already present in storage.
func (r *PostgresRepository) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if r.db == nil || len(hashes) == 0 {
		return map[string]bool{}, nil
	}

	query := `SELECT review_hash FROM reviews WHERE review_hash = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.StringArray(hashes))
	if err != nil {
		return nil, fmt.Errorf("query hashes: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		result[hash] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	return result, nil
}

// SaveReviews inserts cleaned reviews, silently skipping hash collisions.
func (r *PostgresRepository) SaveReviews(ctx context.Context, appID string, reviews []domain.Review) error {
	if r.db == nil || len(reviews) == 0 {
		return nil
	}

	builder := r.builder.
		Insert("reviews").
		Columns("app_id", "review_hash", "rating", "title", "body", "review_date").
		Suffix("ON CONFLICT (review_hash) DO NOTHING")

	for _, review := range reviews {
		builder = builder.Values(appID, review.Hash(), review.Rating, review.Title, review.Text, review.Date)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build reviews insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reviews: %w", err)
	}

	return nil
}

// SaveThemes stores the aggregated themes of one pipeline run.
func (r *PostgresRepository) SaveThemes(ctx context.Context, appID string, batchStart time.Time, themes []domain.AggregatedTheme) error {
	if r.db == nil || len(themes) == 0 {
		return nil
	}

	builder := r.builder.
		Insert("themes").
		Columns("app_id", "batch_start", "theme", "frequency", "key_points", "quotes")

	for _, theme := range themes {
		builder = builder.Values(
			appID,
			batchStart,
			theme.Theme,
			theme.Frequency,
			pq.StringArray(theme.KeyPoints),
			pq.StringArray(theme.CandidateQuotes),
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build themes insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert themes: %w", err)
	}

	return nil
}

// SavePulse upserts the weekly pulse, one row per app and batch.
func (r *PostgresRepository) SavePulse(ctx context.Context, appID string, batchStart time.Time, pulse domain.Pulse) error {
	if r.db == nil {
		return nil
	}

	payload, err := json.Marshal(pulse)
	if err != nil {
		return fmt.Errorf("encode pulse: %w", err)
	}

	query, args, err := r.builder.
		Insert("pulses").
		Columns("app_id", "batch_start", "title", "payload").
		Values(appID, batchStart, pulse.Title, payload).
		Suffix(`ON CONFLICT (app_id, batch_start) DO UPDATE
                SET title = EXCLUDED.title,
                    payload = EXCLUDED.payload,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build pulse upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pulse: %w", err)
	}

	return nil
}
