package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
	"event-ingestion/internal/infra/logging"
)

var _ EventQueryUseCase = (*eventQueryUC)(nil)

// EventQueryUseCase is the read-only side over stored events.
type EventQueryUseCase interface {
	Timeline(ctx context.Context, rootID string) (*model.Timeline, error)
	Search(ctx context.Context, q model.EventSearch) (*model.EventPage, error)
	Overlaps(ctx context.Context) ([]*model.OverlapPair, error)
}

type eventQueryUC struct {
	events repository.EventRepository
	log    *zerolog.Logger
}

func NewEventQueryUseCase(events repository.EventRepository, logger *zerolog.Logger) *eventQueryUC {
	return &eventQueryUC{events: events, log: logger}
}

func (u *eventQueryUC) Timeline(ctx context.Context, rootID string) (*model.Timeline, error) {
	defer logging.TraceDuration(u.log, "EventQueryUC.Timeline")()
	id := strings.ToLower(strings.TrimSpace(rootID))
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return u.events.Timeline(ctx, repository.NoTX, id)
}

// Search rejects out-of-range paging. A zero Limit means the default.
func (u *eventQueryUC) Search(ctx context.Context, q model.EventSearch) (*model.EventPage, error) {
	defer logging.TraceDuration(u.log, "EventQueryUC.Search")()
	if q.Limit == 0 {
		q.Limit = model.DefaultSearchLimit
	}
	if q.Limit < 1 || q.Limit > model.MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, model.MaxSearchLimit)
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidArgument)
	}
	q.SortBy = model.ParseSortField(string(q.SortBy))
	q.NameContains = strings.TrimSpace(q.NameContains)
	return u.events.Search(ctx, repository.NoTX, q)
}

func (u *eventQueryUC) Overlaps(ctx context.Context) ([]*model.OverlapPair, error) {
	defer logging.TraceDuration(u.log, "EventQueryUC.Overlaps")()
	return u.events.Overlaps(ctx, repository.NoTX)
}
