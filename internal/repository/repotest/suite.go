// Package repotest holds a behavioural suite shared by every KataRepository
// implementation.
package repotest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/kata-api/internal/model"
	"github.com/jaekwang-park/kata-api/internal/repository"
)

// Run exercises repo semantics against implementations returned by makeRepo.
// makeRepo must return an empty store; it is called once per subtest.
func Run(t *testing.T, makeRepo func(t *testing.T) repository.KataRepository) {
	t.Helper()

	t.Run("create assigns id and createdAt", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		got, err := repo.Create(ctx, model.Kata{
			Title:      "T",
			URL:        "U",
			Difficulty: ptr("8kyu"),
			Notes:      ptr("N"),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, "T", got.Title)
		assert.Equal(t, "U", got.URL)
		require.NotNil(t, got.Difficulty)
		assert.Equal(t, "8kyu", *got.Difficulty)
		require.NotNil(t, got.Notes)
		assert.Equal(t, "N", *got.Notes)
		assert.False(t, got.Completed)
	})

	t.Run("absent and empty optional fields stay distinct", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		absent, err := repo.Create(ctx, model.Kata{Title: "T", URL: "U"})
		require.NoError(t, err)
		empty, err := repo.Create(ctx, model.Kata{Title: "T", URL: "U", Difficulty: ptr(""), Notes: ptr("")})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, absent.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Difficulty)
		assert.Nil(t, got.Notes)

		got, err = repo.GetByID(ctx, empty.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Difficulty)
		require.NotNil(t, got.Notes)
		assert.Equal(t, "", *got.Difficulty)
		assert.Equal(t, "", *got.Notes)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"first", "second", "third"} {
			k, err := repo.Create(ctx, model.Kata{Title: title, URL: "https://example.test/" + title})
			require.NoError(t, err)
			ids = append(ids, k.ID)
			time.Sleep(2 * time.Millisecond)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, kataIDs(list))
		for i := 1; i < len(list); i++ {
			assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt),
				"createdAt must strictly decrease: %v then %v", list[i-1].CreatedAt, list[i].CreatedAt)
		}
	})

	t.Run("list on empty store", func(t *testing.T) {
		repo := makeRepo(t)

		list, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("update changes only patched fields", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, model.Kata{Title: "T", URL: "U", Difficulty: ptr("6kyu"), Notes: ptr("N")})
		require.NoError(t, err)

		done := true
		updated, err := repo.Update(ctx, created.ID, model.KataPatch{Completed: &done})
		require.NoError(t, err)

		assert.True(t, updated.Completed)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.URL, updated.URL)
		assert.Equal(t, created.Difficulty, updated.Difficulty)
		assert.Equal(t, created.Notes, updated.Notes)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("update clears and sets optional fields", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, model.Kata{Title: "T", URL: "U", Difficulty: ptr("6kyu")})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, model.KataPatch{
			Title:      ptr(""),
			Difficulty: model.NullString(),
			Notes:      model.SomeString("retry with a stack"),
		})
		require.NoError(t, err)

		assert.Equal(t, "", updated.Title)
		assert.Nil(t, updated.Difficulty)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "retry with a stack", *updated.Notes)
	})

	t.Run("update and delete unknown id", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		existing, err := repo.Create(ctx, model.Kata{Title: "T", URL: "U"})
		require.NoError(t, err)

		done := true
		_, err = repo.Update(ctx, "nonexistent-id", model.KataPatch{Completed: &done})
		assert.ErrorIs(t, err, sql.ErrNoRows)

		err = repo.Delete(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, sql.ErrNoRows)

		_, err = repo.GetByID(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, sql.ErrNoRows)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, existing.ID, list[0].ID)
		assert.False(t, list[0].Completed)
	})

	t.Run("delete removes exactly one", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		a, err := repo.Create(ctx, model.Kata{Title: "A", URL: "U"})
		require.NoError(t, err)
		b, err := repo.Create(ctx, model.Kata{Title: "B", URL: "U"})
		require.NoError(t, err)
		c, err := repo.Create(ctx, model.Kata{Title: "C", URL: "U"})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, b.ID))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a.ID, c.ID}, kataIDs(list))
	})

	t.Run("delete many ignores unknown ids", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		keep, err := repo.Create(ctx, model.Kata{Title: "keep", URL: "U"})
		require.NoError(t, err)
		drop, err := repo.Create(ctx, model.Kata{Title: "drop", URL: "U"})
		require.NoError(t, err)

		n, err := repo.DeleteMany(ctx, []string{drop.ID, "nonexistent-id"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{keep.ID}, kataIDs(list))
	})

	t.Run("delete many removes all given ids", func(t *testing.T) {
		repo := makeRepo(t)
		ctx := context.Background()

		a, err := repo.Create(ctx, model.Kata{Title: "A", URL: "U"})
		require.NoError(t, err)
		b, err := repo.Create(ctx, model.Kata{Title: "B", URL: "U"})
		require.NoError(t, err)

		n, err := repo.DeleteMany(ctx, []string{a.ID, b.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("ping", func(t *testing.T) {
		repo := makeRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}

func kataIDs(katas []model.Kata) []string {
	ids := make([]string, 0, len(katas))
	for _, k := range katas {
		ids = append(ids, k.ID)
	}
	return ids
}

func ptr(s string) *string { return &s }
