//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

func TestEventQueryUseCase_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := zerolog.Nop()

	var got model.EventSearch
	repo := &mockEventRepo{
		SearchFunc: func(ctx context.Context, tx repository.Tx, q model.EventSearch) (*model.EventPage, error) {
			got = q
			return &model.EventPage{Limit: q.Limit, Offset: q.Offset, Events: []*model.Event{}}, nil
		},
	}
	uc := NewEventQueryUseCase(repo, &logger)

	t.Run("should apply defaults", func(t *testing.T) {
		if _, err := uc.Search(ctx, model.EventSearch{NameContains: "  conf ", SortBy: "bogus"}); err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
		if got.Limit != model.DefaultSearchLimit {
			t.Errorf("expected default limit, got %d", got.Limit)
		}
		if got.SortBy != model.SortByStartDate {
			t.Errorf("expected start_date sort, got %s", got.SortBy)
		}
		if got.NameContains != "conf" {
			t.Errorf("expected trimmed name filter, got %q", got.NameContains)
		}
	})

	for _, tc := range []struct {
		name string
		q    model.EventSearch
	}{
		{"limit too large", model.EventSearch{Limit: 101}},
		{"negative limit", model.EventSearch{Limit: -1}},
		{"negative offset", model.EventSearch{Limit: 5, Offset: -1}},
	} {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			if _, err := uc.Search(ctx, tc.q); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestEventQueryUseCase_Timeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := zerolog.Nop()

	var asked string
	repo := &mockEventRepo{
		TimelineFunc: func(ctx context.Context, tx repository.Tx, rootID string) (*model.Timeline, error) {
			asked = rootID
			if rootID != "8d3c1c2e-6a44-4c55-9d0b-7b1a4f6f0c11" {
				return nil, domain.ErrNotFound
			}
			return &model.Timeline{Root: &model.Event{EventID: rootID}}, nil
		},
	}
	uc := NewEventQueryUseCase(repo, &logger)

	tl, err := uc.Timeline(ctx, "8D3C1C2E-6A44-4C55-9D0B-7B1A4F6F0C11")
	if err != nil {
		t.Fatalf("Timeline returned error: %v", err)
	}
	if asked != "8d3c1c2e-6a44-4c55-9d0b-7b1a4f6f0c11" || tl.Root.EventID != asked {
		t.Fatalf("expected lookup by lowercase id, got %q", asked)
	}
	if _, err := uc.Timeline(ctx, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an empty id, got %v", err)
	}
}
