//go:build !integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"event-ingestion/internal/domain/model"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("could not start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cli := &redClient{cli: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = cli.Close() })
	logger := zerolog.Nop()
	return NewReportCache(cli, time.Minute, &logger), mr
}

func TestReportCache(t *testing.T) {
	ctx := context.Background()

	t.Run("should miss on an empty cache", func(t *testing.T) {
		cache, _ := newTestCache(t)
		if r, ok := cache.Get(ctx, 1); ok || r != nil {
			t.Fatalf("expected miss, got %+v", r)
		}
	})

	t.Run("should round-trip a terminal report", func(t *testing.T) {
		cache, mr := newTestCache(t)
		want := &model.IngestionReport{
			Status:         model.JobStatusCompleted,
			ProcessedLines: 2,
			ErrorLines:     1,
			Errors:         []string{"Incorrect number of fields"},
		}
		if err := cache.Put(ctx, 7, want); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !mr.Exists(ReportKey(7)) {
			t.Fatalf("expected key %s to be set", ReportKey(7))
		}

		got, ok := cache.Get(ctx, 7)
		if !ok {
			t.Fatal("expected hit")
		}
		if got.Status != want.Status || got.ProcessedLines != 2 || got.ErrorLines != 1 || len(got.Errors) != 1 {
			t.Fatalf("unexpected report: %+v", got)
		}

		if err := cache.Invalidate(ctx, 7); err != nil {
			t.Fatalf("Invalidate failed: %v", err)
		}
		if _, ok := cache.Get(ctx, 7); ok {
			t.Fatal("expected miss after Invalidate")
		}
	})

	t.Run("should refuse non-terminal reports", func(t *testing.T) {
		cache, mr := newTestCache(t)
		err := cache.Put(ctx, 3, &model.IngestionReport{Status: model.JobStatusProcessing})
		if err == nil {
			t.Fatal("expected an error for a Processing report")
		}
		if mr.Exists(ReportKey(3)) {
			t.Fatal("expected nothing to be cached")
		}
	})

	t.Run("should treat garbage as a miss", func(t *testing.T) {
		cache, mr := newTestCache(t)
		if err := mr.Set(ReportKey(9), "{not json"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if _, ok := cache.Get(ctx, 9); ok {
			t.Fatal("expected miss for undecodable entry")
		}
	})

	t.Run("should treat an unreachable server as a miss", func(t *testing.T) {
		mr, err := miniredis.Run()
		if err != nil {
			t.Fatalf("could not start miniredis: %v", err)
		}
		cli := &redClient{cli: redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})}
		defer cli.Close()
		logger := zerolog.Nop()
		cache := NewReportCache(cli, time.Minute, &logger)
		mr.Close()
		if _, ok := cache.Get(ctx, 1); ok {
			t.Fatal("expected miss when redis is down")
		}
	})
}
