package repository

import (
	"context"

	"event-ingestion/internal/domain/model"
)

type EventRepository interface {
	// InsertIgnore stores ev unless an event with the same id exists.
	// inserted is false for a skipped duplicate, which is not an error.
	InsertIgnore(ctx context.Context, tx Tx, ev *model.Event) (inserted bool, err error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Event, error)

	// Timeline walks parent links up and down from rootID.
	Timeline(ctx context.Context, tx Tx, rootID string) (*model.Timeline, error)
	Search(ctx context.Context, tx Tx, q model.EventSearch) (*model.EventPage, error)
	Overlaps(ctx context.Context, tx Tx) ([]*model.OverlapPair, error)
}
