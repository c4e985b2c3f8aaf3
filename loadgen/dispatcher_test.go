package loadgen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southcitycomputer/scc-perf/probe"
	"github.com/southcitycomputer/scc-perf/result"
	"github.com/southcitycomputer/scc-perf/testutils"
)

type fakeRequester struct {
	calls   atomic.Int64
	fail    func(n int64) bool
	delay   time.Duration
	onStart func(n int64)
}

func (f *fakeRequester) Execute(ctx context.Context, _, _ string) (probe.Response, error) {
	n := f.calls.Add(1)
	if f.onStart != nil {
		f.onStart(n)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail != nil && f.fail(n) {
		return probe.Response{}, &probe.RequestError{Stage: probe.StageConnect, Err: errors.New("refused")}
	}
	return probe.Response{Latency: time.Duration(n) * time.Millisecond, Bytes: 100}, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	samples []Sample
}

func (o *recordingObserver) Observe(s Sample) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.samples = append(o.samples, s)
}

func TestDispatcher_Partitioning(t *testing.T) {
	tests := []struct {
		name          string
		requests      int
		concurrency   int
		expectedTotal int64
	}{
		{name: "evenly divisible", requests: 100, concurrency: 10, expectedTotal: 100},
		{name: "remainder dropped", requests: 101, concurrency: 10, expectedTotal: 100},
		{name: "fewer requests than workers", requests: 5, concurrency: 10, expectedTotal: 0},
		{name: "single worker", requests: 7, concurrency: 1, expectedTotal: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requester := &fakeRequester{}
			config := DefaultConfig()
			config.Requests = tt.requests
			config.Concurrency = tt.concurrency

			d, err := NewDispatcher(config, requester)
			require.NoError(t, err)

			results := result.NewBenchmarkResults()
			d.Run(context.Background(), "test", "/", results)

			assert.Equal(t, tt.expectedTotal, requester.calls.Load())
			summary := results.Snapshot()
			assert.Equal(t, uint64(tt.expectedTotal), summary.Total)
			assert.Equal(t, summary.Total, summary.Successful+summary.Failed)
		})
	}
}

func TestDispatcher_FailuresAreCounted(t *testing.T) {
	requester := &fakeRequester{fail: func(n int64) bool { return n%4 == 0 }}
	config := DefaultConfig()
	config.Requests, config.Concurrency = 40, 4

	d, err := NewDispatcher(config, requester)
	require.NoError(t, err)
	results := result.NewBenchmarkResults()
	d.Run(context.Background(), "test", "/", results)

	summary := results.Snapshot()
	assert.Equal(t, uint64(40), summary.Total)
	assert.Equal(t, uint64(10), summary.Failed)
	assert.Equal(t, uint64(30), summary.Successful)
	assert.Equal(t, uint64(3000), summary.Bytes)
}

func TestDispatcher_CancellationStopsNewRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	requester := &fakeRequester{delay: 5 * time.Millisecond}
	requester.onStart = func(n int64) {
		if n == 20 {
			cancel()
		}
	}
	config := DefaultConfig()
	config.Requests, config.Concurrency = 10000, 4

	d, err := NewDispatcher(config, requester)
	require.NoError(t, err)
	results := result.NewBenchmarkResults()
	d.Run(ctx, "test", "/", results)

	issued := requester.calls.Load()
	assert.Less(t, issued, int64(100))
	summary := results.Snapshot()
	assert.Equal(t, uint64(issued), summary.Total, "in-flight requests complete and are recorded")
	assert.Equal(t, uint64(issued), summary.Successful)
}

func TestDispatcher_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	requester := &fakeRequester{}
	d, err := NewDispatcher(DefaultConfig(), requester)
	require.NoError(t, err)
	d.Run(ctx, "test", "/", result.NewBenchmarkResults())
	assert.Zero(t, requester.calls.Load())
}

func TestDispatcher_Observers(t *testing.T) {
	requester := &fakeRequester{fail: func(n int64) bool { return n == 1 }}
	config := DefaultConfig()
	config.Requests, config.Concurrency = 12, 3

	first, second := &recordingObserver{}, &recordingObserver{}
	d, err := NewDispatcher(config, requester, first, second)
	require.NoError(t, err)
	d.Run(context.Background(), "Homepage", "/", result.NewBenchmarkResults())

	require.Len(t, first.samples, 12)
	assert.Len(t, second.samples, 12)
	failures := 0
	for _, s := range first.samples {
		assert.Equal(t, "Homepage", s.Endpoint)
		assert.Equal(t, "/", s.Path)
		if s.Err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestNewDispatcher_RejectsInvalidConfig(t *testing.T) {
	for _, concurrency := range []int{0, -1} {
		config := DefaultConfig()
		config.Concurrency = concurrency
		_, err := NewDispatcher(config, &fakeRequester{})
		assert.Error(t, err)
	}

	config := DefaultConfig()
	config.Host = ""
	_, err := NewDispatcher(config, &fakeRequester{})
	assert.Error(t, err)
}

func TestDispatcher_AgainstRawServer(t *testing.T) {
	srv := testutils.NewRawServer(t, func(string) []byte { return testutils.OKResponse("ok") })
	config := DefaultConfig()
	config.Host = srv.Addr()
	config.Requests, config.Concurrency = 20, 5

	d, err := NewDispatcher(config, probe.NewExecutor())
	require.NoError(t, err)
	results := result.NewBenchmarkResults()
	d.Run(context.Background(), "Health", "/health", results)

	summary := results.Snapshot()
	assert.Equal(t, uint64(20), summary.Successful)
	assert.Equal(t, 20, srv.Requests())
	assert.LessOrEqual(t, summary.MinLatency, summary.AvgLatency)
	assert.LessOrEqual(t, summary.AvgLatency, summary.MaxLatency)
}
