package probe

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusFactory(status int) RequestFactory {
	return func(context.Context, int) RequestResult {
		return RequestResult{StatusCode: status}
	}
}

func TestBurstReturnsOneResultPerRequest(t *testing.T) {
	for _, count := range []int{1, 2, 50, 110} {
		b := Burst(context.Background(), count, statusFactory(201))
		assert.Len(t, b.Results, count)
		assert.Equal(t, count, b.Requested)
		assert.Equal(t, count, b.Count(201))
	}
}

func TestBurstWithNoRequests(t *testing.T) {
	b := Burst(context.Background(), 0, statusFactory(201))
	assert.Len(t, b.Results, 0)
}

func TestBurstStartsAllRequestsBeforeAnyCompletes(t *testing.T) {
	const count = 20
	var started int32
	allStarted := make(chan struct{})
	var once sync.Once

	b := Burst(context.Background(), count, func(ctx context.Context, i int) RequestResult {
		if atomic.AddInt32(&started, 1) == count {
			once.Do(func() { close(allStarted) })
		}
		// no request may finish until every request has been initiated
		select {
		case <-allStarted:
			return RequestResult{StatusCode: 201}
		case <-time.After(5 * time.Second):
			return RequestResult{StatusCode: 500}
		}
	})
	assert.Equal(t, count, b.Count(201))
}

func TestBurstResultsAreInCompletionOrder(t *testing.T) {
	b := Burst(context.Background(), 3, func(ctx context.Context, i int) RequestResult {
		time.Sleep(time.Duration(3-i) * 50 * time.Millisecond)
		return RequestResult{StatusCode: 200 + i}
	})
	assert.Equal(t, []int{202, 201, 200}, b.StatusCodes())
}

func TestBurstRecordsPanicsAsTransportFailures(t *testing.T) {
	b := Burst(context.Background(), 4, func(ctx context.Context, i int) RequestResult {
		if i == 2 {
			panic("boom")
		}
		return RequestResult{StatusCode: 201}
	})
	require.Len(t, b.Results, 4)
	assert.Equal(t, 3, b.Count(201))
	assert.Equal(t, 1, b.Count(StatusTransportFailure))
	require.Error(t, b.FactoryErr)
	assert.Contains(t, b.FactoryErr.Error(), "request 2 panicked: boom")
}

func TestBurstDeadlineConvertsPendingRequestsToTimeouts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)

	b := Burst(ctx, 5, func(ctx context.Context, i int) RequestResult {
		if i%2 == 0 {
			return RequestResult{StatusCode: 201}
		}
		<-release // ignores the context on purpose
		return RequestResult{StatusCode: 201}
	})
	require.Len(t, b.Results, 5)
	assert.Equal(t, 3, b.Count(201))
	assert.Equal(t, 2, b.Count(StatusTimeout))
	assert.Equal(t, map[int]int{201: 3, StatusTimeout: 2}, b.Histogram())
}

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{100, 20, 30, 40, 50, 60, 70, 80, 90, 10}
	assert.Equal(t, 100.0, Percentile(values, 0.95))
	assert.Equal(t, 50.0, Percentile(values, 0.5))
	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 100.0, Percentile(values, 1.5))
}

func TestPercentileSingleValue(t *testing.T) {
	for _, p := range []float64{0, 0.5, 0.95, 1} {
		assert.Equal(t, 42.0, Percentile([]float64{42}, p))
	}
}

func TestPercentileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 0.95))
}

func TestPercentileDoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSampleIsSequential(t *testing.T) {
	var inFlight, maxInFlight int32
	s := Sample(context.Background(), "GET /", 15, func(ctx context.Context) RequestResult {
		n := atomic.AddInt32(&inFlight, 1)
		if n > atomic.LoadInt32(&maxInFlight) {
			atomic.StoreInt32(&maxInFlight, n)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return RequestResult{StatusCode: 200, Elapsed: 5 * time.Millisecond}
	})
	assert.Len(t, s.ElapsedMs, 15)
	assert.Equal(t, int32(1), maxInFlight)
	assert.Equal(t, 5.0, s.P(0.95))
}

func TestSampleRecordsInfinityAfterDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := Sample(ctx, "GET /health", 5, func(ctx context.Context) RequestResult {
		calls++
		if calls == 2 {
			cancel()
		}
		return RequestResult{StatusCode: 200, Elapsed: time.Millisecond}
	})
	require.Len(t, s.ElapsedMs, 5)
	assert.Equal(t, 2, calls)
	assert.True(t, math.IsInf(s.P(0.95), 1))

	summary := s.Summary()
	assert.Equal(t, int64(2), summary.Count)
	assert.Equal(t, 3, summary.TimedOut)
}

func TestSampleSummaryCountsValuesBeyondHistogramRange(t *testing.T) {
	hour := float64(time.Hour / time.Millisecond)
	summary := LatencySample{ElapsedMs: []float64{10, hour}}.Summary()
	assert.Equal(t, int64(1), summary.Count)
	assert.Equal(t, 1, summary.OutOfRange)
	assert.Equal(t, 0, summary.TimedOut)
}

func TestSampleSummary(t *testing.T) {
	s := LatencySample{ElapsedMs: []float64{10, 20, 30}}
	summary := s.Summary()
	assert.Equal(t, int64(3), summary.Count)
	assert.InDelta(t, 10.0, summary.MinMs, 0.1)
	assert.InDelta(t, 30.0, summary.MaxMs, 0.1)
	assert.InDelta(t, 20.0, summary.MeanMs, 0.1)
}

func TestFailedResult(t *testing.T) {
	r := FailedResult(context.DeadlineExceeded, time.Second)
	assert.Equal(t, StatusTimeout, r.StatusCode)
	assert.True(t, r.IsSentinel())

	r = FailedResult(errors.New("connection refused"), time.Millisecond)
	assert.Equal(t, StatusTransportFailure, r.StatusCode)
	assert.False(t, r.IsSuccess())
}

func TestSearchBody(t *testing.T) {
	r := RequestResult{StatusCode: 200, Body: []byte(`{"token":"abc","user":{"id":7}}`)}
	token, err := r.Search("token")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	id, err := r.Search("user.id")
	require.NoError(t, err)
	assert.Equal(t, 7.0, id)

	missing, err := r.Search("expires_at")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSearchWithoutBody(t *testing.T) {
	_, err := RequestResult{StatusCode: 204}.Search("token")
	assert.Error(t, err)
}
