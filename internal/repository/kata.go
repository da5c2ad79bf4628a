package repository

import (
	"context"

	"github.com/jaekwang-park/kata-api/internal/model"
)

// KataRepository is the record store for katas. GetByID, Update and Delete
// return an error wrapping sql.ErrNoRows when the id does not exist.
type KataRepository interface {
	Create(ctx context.Context, kata model.Kata) (model.Kata, error)
	GetByID(ctx context.Context, id string) (model.Kata, error)
	Update(ctx context.Context, id string, patch model.KataPatch) (model.Kata, error)
	Delete(ctx context.Context, id string) error
	// DeleteMany removes every kata whose id is in ids and reports how many
	// rows were removed. Unknown ids are ignored.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// List returns all katas, newest first.
	List(ctx context.Context) ([]model.Kata, error)
	Ping(ctx context.Context) error
}
