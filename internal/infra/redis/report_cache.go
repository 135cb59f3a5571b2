package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/domain/ports/repository"
	"event-ingestion/internal/infra/metrics"
)

var _ repository.ReportCache = (*ReportCache)(nil)

// ReportCache keeps reports of finished jobs. A terminal job's ledger never
// changes again, so entries are only expired by TTL.
type ReportCache struct {
	client RedisClient
	ttl    time.Duration
	log    *zerolog.Logger
}

func NewReportCache(client RedisClient, ttl time.Duration, logger *zerolog.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ReportCache{client: client, ttl: ttl, log: logger}
}

func ReportKey(jobID int64) string {
	return fmt.Sprintf("ingest:report:%d", jobID)
}

// Get never fails: a Redis error or an undecodable entry counts as a miss.
func (c *ReportCache) Get(ctx context.Context, jobID int64) (*model.IngestionReport, bool) {
	val, err := c.client.Get(ctx, ReportKey(jobID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Int64("job_id", jobID).Msg("report cache get failed")
			metrics.IncReportCache("error")
			return nil, false
		}
		metrics.IncReportCache("miss")
		return nil, false
	}
	var r model.IngestionReport
	if err := json.Unmarshal([]byte(val), &r); err != nil || !r.Status.IsTerminal() {
		metrics.IncReportCache("miss")
		return nil, false
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
	metrics.IncReportCache("hit")
	return &r, true
}

func (c *ReportCache) Put(ctx context.Context, jobID int64, r *model.IngestionReport) error {
	if r == nil || !r.Status.IsTerminal() {
		return fmt.Errorf("%w: only terminal reports are cached", domain.ErrInvalidArgument)
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ReportKey(jobID), b, c.ttl)
}

func (c *ReportCache) Invalidate(ctx context.Context, jobID int64) error {
	return c.client.Del(ctx, ReportKey(jobID))
}
