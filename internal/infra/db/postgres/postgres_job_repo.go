package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct{ pool *pgxpool.Pool }

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

func (r *jobRepo) Create(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if job == nil || job.FileName == "" {
		return domain.ErrInvalidArgument
	}
	row, err := pickRow(ctx, r.pool, tx, `
INSERT INTO jobs (file_name, status)
VALUES ($1, $2)
RETURNING job_id, created_at, updated_at;`, job.FileName, model.JobStatusProcessing)
	if err != nil {
		return err
	}
	if err := row.Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return translateError(err)
	}
	job.Status = model.JobStatusProcessing
	return nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `
SELECT job_id, file_name, status, created_at, updated_at
FROM jobs WHERE job_id=$1;`, id)
	if err != nil {
		return nil, err
	}
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(err)
	}
	return j, nil
}

// UpdateStatus moves a Processing job to a terminal status. A job that is
// already terminal is left untouched and reported as ErrTerminalStatus.
func (r *jobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, status model.JobStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidArgument, status)
	}
	tag, err := execSQL(ctx, r.pool, tx, `
UPDATE jobs SET status=$2, updated_at=NOW()
WHERE job_id=$1 AND status=$3;`, id, status, model.JobStatusProcessing)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, tx, id); err != nil {
		return err
	}
	return domain.ErrTerminalStatus
}

func (r *jobRepo) ListStale(ctx context.Context, tx repository.Tx, olderThan time.Time) ([]*model.Job, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT job_id, file_name, status, created_at, updated_at
FROM jobs
WHERE status=$1 AND updated_at < $2
ORDER BY updated_at, job_id;`, model.JobStatusProcessing, olderThan)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []*model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (r *jobRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM jobs WHERE job_id=$1;`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		j      model.Job
		status string
	)
	if err := row.Scan(&j.ID, &j.FileName, &status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)
	j.CreatedAt = j.CreatedAt.UTC()
	j.UpdatedAt = j.UpdatedAt.UTC()
	return &j, nil
}
