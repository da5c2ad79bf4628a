package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/kata-api/internal/model"
)

// SQLiteKataRepository stores katas in a local SQLite file. created_at is kept
// as unix nanoseconds and ties are ordered by rowid.
type SQLiteKataRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteKata(db *sql.DB) *SQLiteKataRepository {
	return NewSQLiteKataWithClock(db, time.Now)
}

// NewSQLiteKataWithClock is NewSQLiteKata with an injectable creation clock.
func NewSQLiteKataWithClock(db *sql.DB, now func() time.Time) *SQLiteKataRepository {
	return &SQLiteKataRepository{db: db, now: now}
}

func (r *SQLiteKataRepository) Create(ctx context.Context, kata model.Kata) (model.Kata, error) {
	query := `
		INSERT INTO katas (id, title, url, difficulty, completed, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + kataColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), kata.Title, kata.URL, kata.Difficulty, kata.Completed, kata.Notes,
		r.now().UTC().UnixNano(),
	)

	return scanSQLiteKata(row)
}

func (r *SQLiteKataRepository) GetByID(ctx context.Context, id string) (model.Kata, error) {
	query := `SELECT ` + kataColumns + ` FROM katas WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	return scanSQLiteKata(row)
}

func (r *SQLiteKataRepository) Update(ctx context.Context, id string, patch model.KataPatch) (model.Kata, error) {
	query := `
		UPDATE katas
		SET title      = COALESCE(?, title),
		    url        = COALESCE(?, url),
		    difficulty = CASE WHEN ? THEN ? ELSE difficulty END,
		    completed  = COALESCE(?, completed),
		    notes      = CASE WHEN ? THEN ? ELSE notes END
		WHERE id = ?
		RETURNING ` + kataColumns

	row := r.db.QueryRowContext(ctx, query,
		patch.Title,
		patch.URL,
		patch.Difficulty.Set, patch.Difficulty.Value,
		patch.Completed,
		patch.Notes.Set, patch.Notes.Value,
		id,
	)

	return scanSQLiteKata(row)
}

func (r *SQLiteKataRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM katas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete kata: %w", err)
	}
	return requireAffected(result)
}

func (r *SQLiteKataRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM katas WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete katas: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteKataRepository) List(ctx context.Context) ([]model.Kata, error) {
	query := `SELECT ` + kataColumns + ` FROM katas ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list katas: %w", err)
	}
	defer rows.Close()

	katas := []model.Kata{}
	for rows.Next() {
		kata, err := scanSQLiteKata(rows)
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

func (r *SQLiteKataRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanSQLiteKata(row scannable) (model.Kata, error) {
	var (
		k         model.Kata
		createdAt int64
	)
	err := row.Scan(
		&k.ID, &k.Title, &k.URL, &k.Difficulty,
		&k.Completed, &k.Notes, &createdAt,
	)
	if err != nil {
		return model.Kata{}, fmt.Errorf("failed to scan kata: %w", err)
	}
	k.CreatedAt = time.Unix(0, createdAt).UTC()
	return k, nil
}

var _ KataRepository = (*SQLiteKataRepository)(nil)
