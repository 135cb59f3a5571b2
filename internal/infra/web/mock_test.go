//go:build !integration

package web

import (
	"context"
	"time"

	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/usecase"
)

var (
	_ usecase.IngestionUseCase  = (*mockIngestionUC)(nil)
	_ usecase.EventQueryUseCase = (*mockEventQueryUC)(nil)
)

type mockIngestionUC struct {
	UploadFunc    func(ctx context.Context, fileName string, content []byte) (int64, error)
	StatusFunc    func(ctx context.Context, jobID int64) (*model.IngestionReport, error)
	ListStaleFunc func(ctx context.Context, olderThan time.Duration) ([]*model.Job, error)
	DeleteJobFunc func(ctx context.Context, jobID int64) error
}

func (m *mockIngestionUC) Upload(ctx context.Context, fileName string, content []byte) (int64, error) {
	return m.UploadFunc(ctx, fileName, content)
}
func (m *mockIngestionUC) Status(ctx context.Context, jobID int64) (*model.IngestionReport, error) {
	return m.StatusFunc(ctx, jobID)
}
func (m *mockIngestionUC) ListStale(ctx context.Context, olderThan time.Duration) ([]*model.Job, error) {
	return m.ListStaleFunc(ctx, olderThan)
}
func (m *mockIngestionUC) DeleteJob(ctx context.Context, jobID int64) error {
	return m.DeleteJobFunc(ctx, jobID)
}

type mockEventQueryUC struct {
	TimelineFunc func(ctx context.Context, rootID string) (*model.Timeline, error)
	SearchFunc   func(ctx context.Context, q model.EventSearch) (*model.EventPage, error)
	OverlapsFunc func(ctx context.Context) ([]*model.OverlapPair, error)
}

func (m *mockEventQueryUC) Timeline(ctx context.Context, rootID string) (*model.Timeline, error) {
	return m.TimelineFunc(ctx, rootID)
}
func (m *mockEventQueryUC) Search(ctx context.Context, q model.EventSearch) (*model.EventPage, error) {
	return m.SearchFunc(ctx, q)
}
func (m *mockEventQueryUC) Overlaps(ctx context.Context) ([]*model.OverlapPair, error) {
	return m.OverlapsFunc(ctx)
}
