// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

// memJobRepo is a small in-memory implementation used by unit tests.
type memJobRepo struct {
	mu        sync.RWMutex
	nextID    int64
	store     map[int64]*model.Job
	createErr error
	findCalls int
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[int64]*model.Job)}
}

func (m *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = m.nextID
	job.Status = model.JobStatusProcessing
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, status model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !j.CanTransitionTo(status) {
		return domain.ErrTerminalStatus
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) ListStale(ctx context.Context, tx repository.Tx, olderThan time.Time) ([]*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.Job{}
	for _, j := range m.store {
		if j.Status == model.JobStatusProcessing && j.UpdatedAt.Before(olderThan) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memJobRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memJobRepo) age(id int64, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[id].UpdatedAt = time.Now().Add(-d)
}

type memProgressRepo struct {
	mu      sync.RWMutex
	entries []*model.ProgressEntry
}

func (m *memProgressRepo) Append(ctx context.Context, tx repository.Tx, e *model.ProgressEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memProgressRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID int64) ([]*model.ProgressEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*model.ProgressEntry{}
	for _, e := range m.entries {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockQueue records enqueued files.
type mockQueue struct {
	files []*model.QueuedFile
	err   error
}

func (q *mockQueue) Enqueue(f *model.QueuedFile) error {
	if q.err != nil {
		return q.err
	}
	q.files = append(q.files, f)
	return nil
}

// memReportCache is a map-backed ReportCache.
type memReportCache struct {
	mu      sync.Mutex
	reports map[int64]*model.IngestionReport
	puts    int
}

func newMemReportCache() *memReportCache {
	return &memReportCache{reports: make(map[int64]*model.IngestionReport)}
}

func (c *memReportCache) Get(ctx context.Context, jobID int64) (*model.IngestionReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[jobID]
	return r, ok
}

func (c *memReportCache) Put(ctx context.Context, jobID int64, r *model.IngestionReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.reports[jobID] = r
	return nil
}

func (c *memReportCache) Invalidate(ctx context.Context, jobID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, jobID)
	return nil
}

// mockEventRepo uses func fields so each test wires only what it needs.
type mockEventRepo struct {
	TimelineFunc func(ctx context.Context, tx repository.Tx, rootID string) (*model.Timeline, error)
	SearchFunc   func(ctx context.Context, tx repository.Tx, q model.EventSearch) (*model.EventPage, error)
	OverlapsFunc func(ctx context.Context, tx repository.Tx) ([]*model.OverlapPair, error)
}

func (m *mockEventRepo) InsertIgnore(ctx context.Context, tx repository.Tx, ev *model.Event) (bool, error) {
	return false, nil
}
func (m *mockEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	return nil, domain.ErrNotFound
}
func (m *mockEventRepo) Timeline(ctx context.Context, tx repository.Tx, rootID string) (*model.Timeline, error) {
	return m.TimelineFunc(ctx, tx, rootID)
}
func (m *mockEventRepo) Search(ctx context.Context, tx repository.Tx, q model.EventSearch) (*model.EventPage, error) {
	return m.SearchFunc(ctx, tx, q)
}
func (m *mockEventRepo) Overlaps(ctx context.Context, tx repository.Tx) ([]*model.OverlapPair, error) {
	return m.OverlapsFunc(ctx, tx)
}
