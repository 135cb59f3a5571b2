package repository

import (
	"context"
	"time"

	"event-ingestion/internal/domain/model"
)

type JobRepository interface {
	// Create inserts a new job in Processing and fills in its generated id.
	Create(ctx context.Context, tx Tx, job *model.Job) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Job, error)
	UpdateStatus(ctx context.Context, tx Tx, id int64, status model.JobStatus) error
	// ListStale returns Processing jobs not touched since olderThan.
	ListStale(ctx context.Context, tx Tx, olderThan time.Time) ([]*model.Job, error)
	// Delete removes the job; its progress entries go with it.
	Delete(ctx context.Context, tx Tx, id int64) error
}
