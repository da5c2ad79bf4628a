package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jaekwang-park/kata-api/internal/model"
)

const kataColumns = `id, title, url, difficulty, completed, notes, created_at`

type PostgresKataRepository struct {
	db *sql.DB
}

func NewPostgresKata(db *sql.DB) *PostgresKataRepository {
	return &PostgresKataRepository{db: db}
}

func (r *PostgresKataRepository) Create(ctx context.Context, kata model.Kata) (model.Kata, error) {
	query := `
		INSERT INTO katas (title, url, difficulty, completed, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + kataColumns

	row := r.db.QueryRowContext(ctx, query,
		kata.Title, kata.URL, kata.Difficulty, kata.Completed, kata.Notes,
	)

	return scanKata(row)
}

func (r *PostgresKataRepository) GetByID(ctx context.Context, id string) (model.Kata, error) {
	query := `SELECT ` + kataColumns + ` FROM katas WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanKata(row)
}

func (r *PostgresKataRepository) Update(ctx context.Context, id string, patch model.KataPatch) (model.Kata, error) {
	query := `
		UPDATE katas
		SET title      = COALESCE($2::text, title),
		    url        = COALESCE($3::text, url),
		    difficulty = CASE WHEN $4::boolean THEN $5::text ELSE difficulty END,
		    completed  = COALESCE($6::boolean, completed),
		    notes      = CASE WHEN $7::boolean THEN $8::text ELSE notes END
		WHERE id = $1
		RETURNING ` + kataColumns

	row := r.db.QueryRowContext(ctx, query,
		id,
		patch.Title,
		patch.URL,
		patch.Difficulty.Set, patch.Difficulty.Value,
		patch.Completed,
		patch.Notes.Set, patch.Notes.Value,
	)

	return scanKata(row)
}

func (r *PostgresKataRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM katas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete kata: %w", err)
	}
	return requireAffected(result)
}

func (r *PostgresKataRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM katas WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete katas: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *PostgresKataRepository) List(ctx context.Context) ([]model.Kata, error) {
	query := `SELECT ` + kataColumns + ` FROM katas ORDER BY created_at DESC, seq DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list katas: %w", err)
	}
	defer rows.Close()

	katas := []model.Kata{}
	for rows.Next() {
		kata, err := scanKata(rows)
		if err != nil {
			return nil, err
		}
		katas = append(katas, kata)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate katas: %w", err)
	}

	return katas, nil
}

func (r *PostgresKataRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanKata(row scannable) (model.Kata, error) {
	var k model.Kata
	err := row.Scan(
		&k.ID, &k.Title, &k.URL, &k.Difficulty,
		&k.Completed, &k.Notes, &k.CreatedAt,
	)
	if err != nil {
		return model.Kata{}, fmt.Errorf("failed to scan kata: %w", err)
	}
	k.CreatedAt = k.CreatedAt.UTC()
	return k, nil
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ensure compile-time interface compliance
var _ KataRepository = (*PostgresKataRepository)(nil)
