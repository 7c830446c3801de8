package probe

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Invoker performs one request for the latency sampler.
type Invoker func(ctx context.Context) RequestResult

// LatencySample holds the elapsed time of each request in a sequential sample, in the order the
// requests were made. A request that could not run before the deadline is recorded as +Inf.
type LatencySample struct {
	Endpoint  string
	ElapsedMs []float64
	Statuses  []int
}

// Sample calls invoke count times, strictly one after another, so that the measurements are
// not affected by concurrent load from the harness itself.
func Sample(ctx context.Context, endpoint string, count int, invoke Invoker) LatencySample {
	s := LatencySample{Endpoint: endpoint}
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			s.ElapsedMs = append(s.ElapsedMs, math.Inf(1))
			s.Statuses = append(s.Statuses, StatusTimeout)
			continue
		}
		r := invoke(ctx)
		elapsed := r.ElapsedMs()
		if r.StatusCode == StatusTimeout {
			elapsed = math.Inf(1)
		}
		s.ElapsedMs = append(s.ElapsedMs, elapsed)
		s.Statuses = append(s.Statuses, r.StatusCode)
	}
	return s
}

// P returns the p'th percentile (0 < p <= 1) of the sample by nearest rank.
func (s LatencySample) P(p float64) float64 {
	return Percentile(s.ElapsedMs, p)
}

// Percentile computes a nearest-rank percentile: the values are sorted ascending and the value
// at index ceil(p*n)-1, clamped to [0, n-1], is returned. No interpolation is done. An empty
// input returns 0.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// LatencySummary is descriptive statistics for a sample, for reporting only. Pass/fail decisions
// use Percentile.
type LatencySummary struct {
	Count      int64   `json:"count"`
	TimedOut   int     `json:"timed_out"`
	OutOfRange int     `json:"out_of_range"`
	MinMs      float64 `json:"min_ms"`
	MeanMs     float64 `json:"mean_ms"`
	MaxMs      float64 `json:"max_ms"`
	StdDevMs   float64 `json:"stddev_ms"`
	P99Ms      float64 `json:"p99_ms"`
}

// Summary records the finite values of the sample in an HDR histogram with microsecond
// resolution. Values too large for the histogram are counted in OutOfRange instead.
func (s LatencySample) Summary() LatencySummary {
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	var summary LatencySummary
	for _, ms := range s.ElapsedMs {
		if math.IsInf(ms, 0) || math.IsNaN(ms) {
			summary.TimedOut++
			continue
		}
		us := int64(ms * 1000)
		if us < 1 {
			us = 1
		}
		if err := h.RecordValue(us); err != nil {
			summary.OutOfRange++
		}
	}
	summary.Count = h.TotalCount()
	if summary.Count == 0 {
		return summary
	}
	summary.MinMs = float64(h.Min()) / 1000
	summary.MeanMs = h.Mean() / 1000
	summary.MaxMs = float64(h.Max()) / 1000
	summary.StdDevMs = h.StdDev() / 1000
	summary.P99Ms = float64(h.ValueAtQuantile(99)) / 1000
	return summary
}
