// File: internal/infra/worker/ingest_worker.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
	"event-ingestion/internal/infra/logging"
	"event-ingestion/internal/infra/metrics"
)

// Shown in the report for insert failures that carry no user-facing cause.
const storeFailureMessage = "Failed to store event"

// IngestWorker is the single consumer of the ingestion Queue. It processes
// one file completely before dequeuing the next.
type IngestWorker struct {
	queue    *Queue
	events   repository.EventRepository
	jobs     repository.JobRepository
	progress repository.ProgressRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
	diag     *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewIngestWorker(
	queue *Queue,
	events repository.EventRepository,
	jobs repository.JobRepository,
	progress repository.ProgressRepository,
	tm repository.TransactionManager,
	log *zerolog.Logger,
	diag *zerolog.Logger,
) *IngestWorker {
	if diag == nil {
		diag = log
	}
	return &IngestWorker{
		queue:    queue,
		events:   events,
		jobs:     jobs,
		progress: progress,
		tm:       tm,
		log:      log,
		diag:     diag,
	}
}

// Start launches the consumer goroutine. It returns an error if the worker
// is already running.
func (w *IngestWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return errors.New("ingest worker already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx, w.done)
	w.log.Info().Msg("ingest worker started")
	return nil
}

// Stop stops dequeuing and waits for the in-flight file, if any, until ctx
// expires. Files still queued stay queued.
func (w *IngestWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		w.log.Info().Msg("ingest worker stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ingest worker stop: %w", ctx.Err())
	}
}

func (w *IngestWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for ctx.Err() == nil {
		f, err := w.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, domain.ErrQueueClosed) {
				w.log.Error().Err(err).Msg("dequeue failed")
			}
			return
		}
		// Shutdown must not cut a file in half.
		w.ProcessFile(context.WithoutCancel(ctx), f)
	}
}

// ProcessFile ingests one file and always acknowledges it on the queue.
func (w *IngestWorker) ProcessFile(ctx context.Context, f *model.QueuedFile) {
	defer w.queue.Done()
	start := time.Now()
	ctx = logging.WithJobID(ctx, f.JobID)
	log := logging.With(ctx, w.log)
	defer logging.TraceDuration(log, "IngestWorker.ProcessFile")()

	log.Info().Str("file", f.FileName).Int("bytes", len(f.Content)).Msg("processing file")

	jobKnown := true
	if _, err := w.jobs.FindByID(ctx, nil, f.JobID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			w.finish(ctx, log, f, true, model.JobStatusFailed, err, start)
			return
		}
		jobKnown = false
		log.Warn().Msg("job not found; lines will be stored without a status update")
	}

	status := model.JobStatusCompleted
	var fault error
	for i, line := range splitLines(strings.ToValidUTF8(string(f.Content), "")) {
		if err := w.processLine(ctx, log, f, i+1, line); err != nil {
			status, fault = model.JobStatusFailed, err
			break
		}
	}
	w.finish(ctx, log, f, jobKnown, status, fault, start)
}

// processLine returns an error only for faults that stop the whole file.
func (w *IngestWorker) processLine(ctx context.Context, log *zerolog.Logger, f *model.QueuedFile, n int, line string) error {
	entry := model.NewCompletedEntry(f.JobID, n)

	ev, err := model.ParseEventLine(line)
	if err == nil {
		var inserted bool
		err = w.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			var ierr error
			inserted, ierr = w.events.InsertIgnore(ctx, tx, ev)
			return ierr
		})
		if err == nil && !inserted {
			metrics.IncDuplicateEvent()
			log.Debug().Int("line", n).Str("event_id", ev.EventID).Msg("duplicate event skipped")
		}
		if errors.Is(err, domain.ErrStoreUnavailable) {
			// No progress entry for this line: the store is gone and the job
			// is failed as a whole.
			return fmt.Errorf("line %d: %w", n, err)
		}
	}

	if err != nil {
		msg := lineMessage(err)
		entry = model.NewFailedEntry(f.JobID, n, msg)
		metrics.IncIngestLine("failed")
		w.diag.Warn().
			Str("file", f.FileName).
			Int64("job_id", f.JobID).
			Int("line", n).
			Str("error", msg).
			Str("content", logging.Preview(strings.TrimSpace(line), 512)).
			Msg("line rejected")
		if !isLineError(err) {
			log.Warn().Err(err).Int("line", n).Msg("event insert failed")
		}
	} else {
		metrics.IncIngestLine("completed")
	}

	if err := w.progress.Append(ctx, nil, entry); err != nil {
		log.Error().Err(err).Int("line", n).Str("file", f.FileName).Msg("failed to append progress entry")
	}
	return nil
}

func (w *IngestWorker) finish(ctx context.Context, log *zerolog.Logger, f *model.QueuedFile, jobKnown bool, status model.JobStatus, fault error, start time.Time) {
	elapsed := time.Since(start)
	metrics.ObserveFileDuration(elapsed)
	metrics.IncIngestJob(string(status))

	if fault != nil {
		log.Error().Err(fault).Str("file", f.FileName).Msg("whole-file fault; marking job failed")
	}
	if jobKnown {
		if err := w.jobs.UpdateStatus(ctx, nil, f.JobID, status); err != nil {
			log.Error().Err(err).Str("status", string(status)).Msg("failed to write final job status")
		}
	}
	log.Info().Str("file", f.FileName).Str("status", string(status)).Dur("duration", elapsed).Msg("file processed")
}

func lineMessage(err error) string {
	var lerr *model.LineError
	switch {
	case errors.As(err, &lerr):
		return lerr.Message
	case errors.Is(err, domain.ErrUnknownParent):
		return domain.ErrUnknownParent.Error()
	default:
		return storeFailureMessage
	}
}

func isLineError(err error) bool {
	var lerr *model.LineError
	return errors.As(err, &lerr)
}

// splitLines splits on "\n" and keeps no trailing empty line, so "a\nb\n"
// and "a\nb" both hold two lines. Empty content holds none.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
