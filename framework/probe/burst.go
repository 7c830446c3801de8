package probe

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// RequestFactory performs the i'th request of a burst. Any per-index variation, such as a
// different source identity header, is the factory's responsibility.
type RequestFactory func(ctx context.Context, i int) RequestResult

// BurstResult holds the results of a burst in completion order.
type BurstResult struct {
	Results   []RequestResult
	Requested int
	// FactoryErr is the first panic raised by the request factory, if any. It points at a bug in
	// the scenario rather than the API; the request itself is already in Results as a transport
	// failure.
	FactoryErr error
}

// StatusCodes returns the status of every result, in completion order.
func (b BurstResult) StatusCodes() []int {
	ret := make([]int, 0, len(b.Results))
	for _, r := range b.Results {
		ret = append(ret, r.StatusCode)
	}
	return ret
}

// Count returns how many results had the given status.
func (b BurstResult) Count(status int) int {
	n := 0
	for _, r := range b.Results {
		if r.StatusCode == status {
			n++
		}
	}
	return n
}

// Histogram returns the number of results per status.
func (b BurstResult) Histogram() map[int]int {
	ret := make(map[int]int)
	for _, r := range b.Results {
		ret[r.StatusCode]++
	}
	return ret
}

type burstCollector struct {
	results  []RequestResult
	recorded []bool
	sealed   bool
	lock     sync.Mutex
}

func (c *burstCollector) add(i int, r RequestResult) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.sealed || c.recorded[i] {
		return
	}
	c.recorded[i] = true
	c.results = append(c.results, r)
}

// seal stops accepting results and fills every unrecorded slot with a timeout sentinel.
func (c *burstCollector) seal(elapsed time.Duration, err error) []RequestResult {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sealed = true
	for i, done := range c.recorded {
		if !done {
			c.recorded[i] = true
			c.results = append(c.results, RequestResult{StatusCode: StatusTimeout, Elapsed: elapsed, Err: err})
		}
	}
	return append([]RequestResult(nil), c.results...)
}

// Burst issues count requests concurrently and waits for all of them.
//
// Every request is started before any of them is awaited: all workers are created first, and
// are then released together. Results are collected in completion order, and the result always
// contains exactly count entries. A request that fails at the transport level, or whose factory
// panics, is recorded as a sentinel result. If ctx expires before every request has finished,
// the pending ones are recorded as StatusTimeout and any later completions are discarded.
func Burst(ctx context.Context, count int, factory RequestFactory) BurstResult {
	if count <= 0 {
		return BurstResult{}
	}
	collector := &burstCollector{recorded: make([]bool, count)}
	start := make(chan struct{})
	startTime := time.Now()

	var g errgroup.Group
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			<-start
			result, err := runUnit(ctx, i, factory)
			collector.add(i, result)
			return err
		})
	}
	close(start)

	var factoryErr error
	joined := make(chan struct{})
	go func() {
		factoryErr = g.Wait()
		close(joined)
	}()

	ret := BurstResult{Requested: count}
	select {
	case <-joined:
		ret.FactoryErr = factoryErr
	case <-ctx.Done():
	}
	ret.Results = collector.seal(time.Since(startTime), ctx.Err())
	return ret
}

func runUnit(ctx context.Context, i int, factory RequestFactory) (result RequestResult, err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("request %d panicked: %v", i, r)
			result = RequestResult{
				StatusCode: StatusTransportFailure,
				Elapsed:    time.Since(started),
				Err:        err,
			}
		}
	}()
	return factory(ctx, i), nil
}
