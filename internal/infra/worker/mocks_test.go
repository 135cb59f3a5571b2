//go:build !integration

// File: internal/infra/worker/mocks_test.go
package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

// memEventRepo is an in-memory event store. insertErr, when set, is consulted
// before every insert.
type memEventRepo struct {
	mu        sync.Mutex
	store     map[string]*model.Event
	insertErr func(ev *model.Event) error
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{store: make(map[string]*model.Event)}
}

func (m *memEventRepo) InsertIgnore(ctx context.Context, tx repository.Tx, ev *model.Event) (bool, error) {
	if m.insertErr != nil {
		if err := m.insertErr(ev); err != nil {
			return false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[ev.EventID]; ok {
		return false, nil
	}
	if ev.ParentID != nil {
		if _, ok := m.store[*ev.ParentID]; !ok {
			return false, domain.ErrUnknownParent
		}
	}
	cp := *ev
	m.store[ev.EventID] = &cp
	return true, nil
}

func (m *memEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memEventRepo) Timeline(ctx context.Context, tx repository.Tx, rootID string) (*model.Timeline, error) {
	return nil, domain.ErrNotFound
}

func (m *memEventRepo) Search(ctx context.Context, tx repository.Tx, q model.EventSearch) (*model.EventPage, error) {
	return &model.EventPage{}, nil
}

func (m *memEventRepo) Overlaps(ctx context.Context, tx repository.Tx) ([]*model.OverlapPair, error) {
	return nil, nil
}

func (m *memEventRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// memJobRepo keeps jobs and records every status write in order.
type memJobRepo struct {
	mu       sync.Mutex
	nextID   int64
	jobs     map[int64]*model.Job
	findErr  error
	updates  []int64
	onUpdate func(id int64, status model.JobStatus)
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[int64]*model.Job)}
}

func (m *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = m.nextID
	job.Status = model.JobStatusProcessing
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, status model.JobStatus) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	if !j.CanTransitionTo(status) {
		m.mu.Unlock()
		return domain.ErrTerminalStatus
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	m.updates = append(m.updates, id)
	hook := m.onUpdate
	m.mu.Unlock()
	if hook != nil {
		hook(id, status)
	}
	return nil
}

func (m *memJobRepo) ListStale(ctx context.Context, tx repository.Tx, olderThan time.Time) ([]*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Job{}
	for _, j := range m.jobs {
		if j.Status == model.JobStatusProcessing && j.UpdatedAt.Before(olderThan) {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (m *memJobRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memJobRepo) status(id int64) model.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j.Status
	}
	return ""
}

// memProgressRepo is an append-only ledger shared across jobs so tests can
// check the global order of appends.
type memProgressRepo struct {
	mu        sync.Mutex
	entries   []*model.ProgressEntry
	appendErr error
	onAppend  func(e *model.ProgressEntry)
}

func (m *memProgressRepo) Append(ctx context.Context, tx repository.Tx, e *model.ProgressEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	e.ID = int64(len(m.entries) + 1)
	cp := *e
	m.entries = append(m.entries, &cp)
	hook := m.onAppend
	m.mu.Unlock()
	if hook != nil {
		hook(&cp)
	}
	return nil
}

func (m *memProgressRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID int64) ([]*model.ProgressEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.ProgressEntry{}
	for _, e := range m.entries {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memProgressRepo) all() []*model.ProgressEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.ProgressEntry(nil), m.entries...)
}

// memTxManager runs fn with a nil tx; the mem repos ignore it.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}
