package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jaekwang-park/kata-api/internal/model"
	"github.com/jaekwang-park/kata-api/internal/repository"
	"github.com/jaekwang-park/kata-api/internal/view"
)

const (
	msgTitleURLRequired = "Title and URL are required"
	msgIDsRequired      = "IDs array is required and must not be empty"
	msgIDsNotStrings    = "All IDs must be strings"
)

type CreateKataInput struct {
	Title      string
	URL        string
	Difficulty *string
	Notes      *string
}

// Validate checks that title and url are present. Difficulty, notes and the
// url format are not checked.
func (in CreateKataInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.URL, validation.Required),
	)
}

type UpdateKataInput struct {
	Title      *string
	URL        *string
	Difficulty model.OptionalString
	Completed  *bool
	Notes      model.OptionalString
}

// BulkDeleteInput holds the ids exactly as decoded from the request, so that
// non-array and non-string values can be reported as validation failures.
type BulkDeleteInput struct {
	IDs any
}

type KataService struct {
	repo repository.KataRepository
}

func NewKataService(repo repository.KataRepository) *KataService {
	return &KataService{repo: repo}
}

func (s *KataService) List(ctx context.Context) ([]model.Kata, error) {
	katas, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list katas: %w", err)
	}
	if katas == nil {
		katas = []model.Kata{}
	}
	return katas, nil
}

func (s *KataService) Stats(ctx context.Context) (model.KataStats, error) {
	katas, err := s.List(ctx)
	if err != nil {
		return model.KataStats{}, err
	}
	return view.Count(katas), nil
}

func (s *KataService) Create(ctx context.Context, input CreateKataInput) (model.Kata, error) {
	if err := input.Validate(); err != nil {
		return model.Kata{}, &ValidationError{Message: msgTitleURLRequired, Cause: err}
	}

	kata := model.Kata{
		Title:      input.Title,
		URL:        input.URL,
		Difficulty: input.Difficulty,
		Notes:      input.Notes,
		Completed:  false,
	}

	created, err := s.repo.Create(ctx, kata)
	if err != nil {
		return model.Kata{}, fmt.Errorf("failed to create kata: %w", err)
	}

	return created, nil
}

func (s *KataService) GetByID(ctx context.Context, id string) (model.Kata, error) {
	kata, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Kata{}, ErrNotFound
		}
		return model.Kata{}, fmt.Errorf("failed to get kata: %w", err)
	}
	return kata, nil
}

// Update applies a partial update. Unlike Create it re-validates nothing, so
// a title or url may be set to the empty string.
func (s *KataService) Update(ctx context.Context, id string, input UpdateKataInput) (model.Kata, error) {
	patch := model.KataPatch{
		Title:      input.Title,
		URL:        input.URL,
		Difficulty: input.Difficulty,
		Completed:  input.Completed,
		Notes:      input.Notes,
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Kata{}, ErrNotFound
		}
		return model.Kata{}, fmt.Errorf("failed to update kata: %w", err)
	}

	return updated, nil
}

func (s *KataService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete kata: %w", err)
	}
	return nil
}

// BulkDelete removes every kata in input.IDs and returns how many existed.
// The ids must form a non-empty list of strings; otherwise nothing is deleted.
func (s *KataService) BulkDelete(ctx context.Context, input BulkDeleteInput) (int64, error) {
	ids, err := validateIDs(input.IDs)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete katas: %w", err)
	}
	return n, nil
}

func validateIDs(raw any) ([]string, error) {
	list, _ := raw.([]any)
	if err := validation.Validate(list, validation.Required); err != nil {
		return nil, &ValidationError{Message: msgIDsRequired, Cause: err}
	}
	if err := validation.Validate(list, validation.Each(validation.By(isString))); err != nil {
		return nil, &ValidationError{Message: msgIDsNotStrings, Cause: err}
	}

	ids := make([]string, len(list))
	for i, v := range list {
		ids[i] = v.(string)
	}
	return ids, nil
}

func isString(value any) error {
	if _, ok := value.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}
