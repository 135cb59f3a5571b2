package repository

import (
	"context"

	"event-ingestion/internal/domain/model"
)

type ProgressRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.ProgressEntry) error
	// ListByJob returns entries in the order they were appended.
	ListByJob(ctx context.Context, tx Tx, jobID int64) ([]*model.ProgressEntry, error)
}

// ReportCache holds ingestion reports of jobs in a terminal status.
type ReportCache interface {
	Get(ctx context.Context, jobID int64) (*model.IngestionReport, bool)
	Put(ctx context.Context, jobID int64, report *model.IngestionReport) error
	Invalidate(ctx context.Context, jobID int64) error
}
