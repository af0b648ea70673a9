package metering

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgindex/pkgindex/pkg/observability"
)

func newTestMeter(t *testing.T) (*Meter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewMeter(client, logger), mr
}

func TestPeriod(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	period := CurrentPeriod(now)

	assert.Equal(t, 2026, period.Year)
	assert.Equal(t, time.August, period.Month)
	assert.Equal(t, "2026-08", period.String())
	assert.Equal(t, "api-usage-2026-08", period.RedisKey())
}

func TestPeriod_PadsSingleDigitMonths(t *testing.T) {
	period := Period{Year: 2026, Month: time.January}
	assert.Equal(t, "api-usage-2026-01", period.RedisKey())
}

func TestMeter_Record(t *testing.T) {
	meter, mr := newTestMeter(t)
	meter.now = func() time.Time {
		return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	}

	ctx := context.Background()
	require.NoError(t, meter.Record(ctx, 42))
	require.NoError(t, meter.Record(ctx, 42))
	require.NoError(t, meter.Record(ctx, 7))

	assert.Equal(t, "2", mr.HGet("api-usage-2026-08", "42"))
	assert.Equal(t, "1", mr.HGet("api-usage-2026-08", "7"))
}

func TestMeter_RecordRollsOverByPeriod(t *testing.T) {
	meter, mr := newTestMeter(t)
	ctx := context.Background()

	meter.now = func() time.Time {
		return time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC)
	}
	require.NoError(t, meter.Record(ctx, 42))

	meter.now = func() time.Time {
		return time.Date(2026, time.September, 1, 0, 1, 0, 0, time.UTC)
	}
	require.NoError(t, meter.Record(ctx, 42))

	// A new period is a new key; the old count is untouched
	assert.Equal(t, "1", mr.HGet("api-usage-2026-08", "42"))
	assert.Equal(t, "1", mr.HGet("api-usage-2026-09", "42"))
}

func TestMeter_ConcurrentRecordsLoseNoUpdates(t *testing.T) {
	meter, _ := newTestMeter(t)
	meter.now = func() time.Time {
		return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	}

	const n = 100
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meter.Record(ctx, 42)
		}()
	}
	wg.Wait()

	count, err := meter.Usage(ctx, Period{Year: 2026, Month: time.August}, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestMeter_UsageMissingEntryIsZero(t *testing.T) {
	meter, _ := newTestMeter(t)

	count, err := meter.Usage(context.Background(), Period{Year: 2026, Month: time.August}, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMeter_RecordReturnsErrorWhenStoreUnreachable(t *testing.T) {
	meter, mr := newTestMeter(t)
	mr.Close()

	// The caller (the gate) swallows this; the meter just reports it.
	err := meter.Record(context.Background(), 42)
	assert.Error(t, err)
}

func TestMeter_PeriodUsage(t *testing.T) {
	meter, _ := newTestMeter(t)
	meter.now = func() time.Time {
		return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	}

	ctx := context.Background()
	require.NoError(t, meter.Record(ctx, 1))
	require.NoError(t, meter.Record(ctx, 1))
	require.NoError(t, meter.Record(ctx, 2))

	usage, err := meter.PeriodUsage(ctx, Period{Year: 2026, Month: time.August})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 2, 2: 1}, usage)
}
