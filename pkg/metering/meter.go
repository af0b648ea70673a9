package metering

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pkgindex/pkgindex/pkg/observability"
)

// Period identifies one billing period at year-month granularity. Writers and
// readers share this type so the counter key never drifts between them.
type Period struct {
	Year  int
	Month time.Month
}

// CurrentPeriod derives the billing period from calendar time
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: now.Month()}
}

// String formats the period tag, e.g. "2026-08"
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// RedisKey is the counter hash for this period, e.g. "api-usage-2026-08".
// Each key's count lives as a field of the hash, created lazily on first
// increment; retention of old period hashes is an external concern.
func (p Period) RedisKey() string {
	return "api-usage-" + p.String()
}

// Meter records per-key API usage in a shared Redis counting store
type Meter struct {
	client *redis.Client
	logger *observability.Logger
	now    func() time.Time
}

// NewMeter creates a usage meter backed by the given Redis client
func NewMeter(client *redis.Client, logger *observability.Logger) *Meter {
	return &Meter{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Record increments the (current period, key) counter by exactly 1. The
// increment is a single HINCRBY, atomic at the storage layer, so concurrent
// requests never lose updates. Recording is metering, not gating: failures
// are logged and swallowed, and the error return exists only for metrics
// accounting by the caller.
func (m *Meter) Record(ctx context.Context, keyID int64) error {
	period := CurrentPeriod(m.now())

	err := m.client.HIncrBy(ctx, period.RedisKey(), strconv.FormatInt(keyID, 10), 1).Err()
	if err != nil {
		m.logger.WithError(err).
			WithField("api_key_id", keyID).
			WithField("period", period.String()).
			Warn("failed to record api usage")
		return err
	}

	return nil
}

// Usage reads back the counter for one key in one period. Missing entries
// count as zero.
func (m *Meter) Usage(ctx context.Context, period Period, keyID int64) (int64, error) {
	val, err := m.client.HGet(ctx, period.RedisKey(), strconv.FormatInt(keyID, 10)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read api usage: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt usage counter for key %d in %s: %w", keyID, period, err)
	}

	return count, nil
}

// PeriodUsage reads back all counters for one period, keyed by credential id
func (m *Meter) PeriodUsage(ctx context.Context, period Period) (map[int64]int64, error) {
	fields, err := m.client.HGetAll(ctx, period.RedisKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read period usage: %w", err)
	}

	usage := make(map[int64]int64, len(fields))
	for field, val := range fields {
		keyID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		usage[keyID] = count
	}

	return usage, nil
}
