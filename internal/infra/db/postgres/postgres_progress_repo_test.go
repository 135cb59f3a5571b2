//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
)

func TestProgressRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	jobs := NewJobRepo(testPool)
	repo := NewProgressRepo(testPool)
	ctx := context.Background()
	cleanup(t)

	job := &model.Job{FileName: "mixed.txt"}
	if err := jobs.Create(ctx, repository.NoTX, job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("entries come back in append order", func(t *testing.T) {
		in := []*model.ProgressEntry{
			model.NewCompletedEntry(job.ID, 1),
			model.NewFailedEntry(job.ID, 2, "Incorrect number of fields"),
			model.NewCompletedEntry(job.ID, 3),
		}
		for _, e := range in {
			if err := repo.Append(ctx, repository.NoTX, e); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if e.ID == 0 {
				t.Fatal("expected generated id")
			}
		}
		got, err := repo.ListByJob(ctx, repository.NoTX, job.ID)
		if err != nil {
			t.Fatalf("ListByJob: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(got))
		}
		for i, e := range got {
			if e.LineNumber != i+1 {
				t.Errorf("entry %d has line %d", i, e.LineNumber)
			}
		}
		if got[1].LineStatus != model.LineStatusFailed || got[1].ErrorMessage == nil || *got[1].ErrorMessage != "Incorrect number of fields" {
			t.Errorf("unexpected failed entry %+v", got[1])
		}
		r := model.Summarize(model.JobStatusCompleted, got)
		if r.ProcessedLines != 2 || r.ErrorLines != 1 {
			t.Errorf("unexpected report %+v", r)
		}
	})

	t.Run("status and message must agree", func(t *testing.T) {
		bad := &model.ProgressEntry{JobID: job.ID, LineNumber: 4, LineStatus: model.LineStatusFailed}
		if err := repo.Append(ctx, repository.NoTX, bad); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		err := repo.Append(ctx, repository.NoTX, model.NewCompletedEntry(9999, 1))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
