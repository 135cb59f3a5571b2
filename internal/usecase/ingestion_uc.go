package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
	"event-ingestion/internal/infra/logging"
)

// Compile-time check
var _ IngestionUseCase = (*ingestionUC)(nil)

// IngestionUseCase is the intake and status side of the pipeline.
type IngestionUseCase interface {
	// Upload records a Processing job and queues content for the worker. It
	// returns before any line is parsed.
	Upload(ctx context.Context, fileName string, content []byte) (int64, error)
	Status(ctx context.Context, jobID int64) (*model.IngestionReport, error)
	ListStale(ctx context.Context, olderThan time.Duration) ([]*model.Job, error)
	DeleteJob(ctx context.Context, jobID int64) error
}

// FileQueue is the hand-off to the ingest worker.
type FileQueue interface {
	Enqueue(f *model.QueuedFile) error
}

type ingestionUC struct {
	jobs       repository.JobRepository
	progress   repository.ProgressRepository
	queue      FileQueue
	cache      repository.ReportCache // optional
	staleAfter time.Duration
	log        *zerolog.Logger
}

func NewIngestionUseCase(
	jobs repository.JobRepository,
	progress repository.ProgressRepository,
	queue FileQueue,
	cache repository.ReportCache,
	staleAfter time.Duration,
	logger *zerolog.Logger,
) *ingestionUC {
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	return &ingestionUC{
		jobs:       jobs,
		progress:   progress,
		queue:      queue,
		cache:      cache,
		staleAfter: staleAfter,
		log:        logger,
	}
}

func (u *ingestionUC) Upload(ctx context.Context, fileName string, content []byte) (int64, error) {
	defer logging.TraceDuration(u.log, "IngestionUC.Upload")()

	name := model.CleanFileName(fileName)
	if name == "" {
		return 0, fmt.Errorf("%w: file name is required", domain.ErrInvalidArgument)
	}

	job := &model.Job{FileName: name}
	if err := u.jobs.Create(ctx, repository.NoTX, job); err != nil {
		return 0, err
	}

	if err := u.queue.Enqueue(&model.QueuedFile{FileName: name, JobID: job.ID, Content: content}); err != nil {
		// Nothing will ever process this job; do not leave it Processing.
		if uerr := u.jobs.UpdateStatus(context.WithoutCancel(ctx), repository.NoTX, job.ID, model.JobStatusFailed); uerr != nil {
			u.log.Error().Err(uerr).Int64("job_id", job.ID).Msg("failed to mark unqueued job failed")
		}
		return 0, fmt.Errorf("enqueue job %d: %w", job.ID, err)
	}

	logging.With(logging.WithJobID(ctx, job.ID), u.log).Info().
		Str("file", name).Int("bytes", len(content)).Msg("file queued")
	return job.ID, nil
}

// Status folds the progress ledger into a report. Terminal reports never
// change, so they are served from and written to the cache when one is set.
func (u *ingestionUC) Status(ctx context.Context, jobID int64) (*model.IngestionReport, error) {
	defer logging.TraceDuration(u.log, "IngestionUC.Status")()

	if u.cache != nil {
		if r, ok := u.cache.Get(ctx, jobID); ok {
			return r, nil
		}
	}

	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	entries, err := u.progress.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	report := model.Summarize(job.Status, entries)

	if u.cache != nil && job.Status.IsTerminal() {
		if err := u.cache.Put(ctx, jobID, report); err != nil {
			u.log.Warn().Err(err).Int64("job_id", jobID).Msg("failed to cache report")
		}
	}
	return report, nil
}

// ListStale returns Processing jobs untouched for at least olderThan. After
// a restart these are jobs whose queued file was lost.
func (u *ingestionUC) ListStale(ctx context.Context, olderThan time.Duration) ([]*model.Job, error) {
	if olderThan <= 0 {
		olderThan = u.staleAfter
	}
	return u.jobs.ListStale(ctx, repository.NoTX, time.Now().Add(-olderThan))
}

func (u *ingestionUC) DeleteJob(ctx context.Context, jobID int64) error {
	if err := u.jobs.Delete(ctx, repository.NoTX, jobID); err != nil {
		return err
	}
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, jobID); err != nil {
			u.log.Warn().Err(err).Int64("job_id", jobID).Msg("failed to evict cached report")
		}
	}
	return nil
}
