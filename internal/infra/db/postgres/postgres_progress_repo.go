package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

var _ repository.ProgressRepository = (*progressRepo)(nil)

type progressRepo struct{ pool *pgxpool.Pool }

func NewProgressRepo(pool *pgxpool.Pool) *progressRepo {
	return &progressRepo{pool: pool}
}

// Append records one line outcome. The ledger is append-only; entries are
// never updated.
func (r *progressRepo) Append(ctx context.Context, tx repository.Tx, e *model.ProgressEntry) error {
	if e == nil || (e.LineStatus == model.LineStatusFailed) != (e.ErrorMessage != nil) {
		return domain.ErrInvalidArgument
	}
	row, err := pickRow(ctx, r.pool, tx, `
INSERT INTO progress (job_id, line_number, line_status, error_message)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;`, e.JobID, e.LineNumber, e.LineStatus, e.ErrorMessage)
	if err != nil {
		return err
	}
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: job %d", domain.ErrNotFound, e.JobID)
		}
		return translateError(err)
	}
	return nil
}

func (r *progressRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID int64) ([]*model.ProgressEntry, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, job_id, line_number, line_status, error_message, created_at
FROM progress
WHERE job_id=$1
ORDER BY id;`, jobID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	out := []*model.ProgressEntry{}
	for rows.Next() {
		var (
			e      model.ProgressEntry
			status string
		)
		if err := rows.Scan(&e.ID, &e.JobID, &e.LineNumber, &status, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		e.LineStatus = model.LineStatus(status)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}
