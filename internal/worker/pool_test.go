package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	counter *atomic.Int64
	fail    bool
}

type countingResult struct {
	err error
}

func (r *countingResult) GetError() error { return r.err }

func (j *countingJob) Execute(ctx context.Context) Result {
	if j.counter != nil {
		j.counter.Add(1)
	}
	if j.fail {
		return &countingResult{err: errors.New("job failed")}
	}
	return &countingResult{}
}

func runJobs(ctx context.Context, workers int, jobs []Job) []Result {
	pool := NewPool(workers)
	pool.Start(ctx)
	go func() {
		for _, j := range jobs {
			pool.Submit(j)
		}
		pool.Close()
	}()
	return pool.Wait()
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	var counter atomic.Int64
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = &countingJob{counter: &counter}
	}

	results := runJobs(context.Background(), 4, jobs)

	if counter.Load() != 20 {
		t.Errorf("Executed %d jobs, want 20", counter.Load())
	}
	if len(results) != 20 {
		t.Errorf("Got %d results, want 20", len(results))
	}
}

func TestPool_MoreJobsThanQueueCapacity(t *testing.T) {
	// Submission from a producer goroutine must not deadlock against
	// result draining, no matter how many jobs there are.
	var counter atomic.Int64
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = &countingJob{counter: &counter}
	}

	results := runJobs(context.Background(), 2, jobs)
	if len(results) != 100 {
		t.Errorf("Got %d results, want 100", len(results))
	}
}

func TestPool_ErrorsSurfaceInResults(t *testing.T) {
	jobs := []Job{
		&countingJob{},
		&countingJob{fail: true},
		&countingJob{},
	}

	results := runJobs(context.Background(), 2, jobs)

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("Got %d failures, want 1", failures)
	}
}

func TestPool_MinimumOneWorker(t *testing.T) {
	results := runJobs(context.Background(), 0, []Job{&countingJob{}})
	if len(results) != 1 {
		t.Errorf("Got %d results, want 1", len(results))
	}
	if results2 := runJobs(context.Background(), -3, []Job{&countingJob{}}); len(results2) != 1 {
		t.Errorf("Got %d results, want 1", len(results2))
	}
}

type gatedJob struct {
	current *atomic.Int64
	peak    *atomic.Int64
	mu      *sync.Mutex
}

func (j *gatedJob) Execute(ctx context.Context) Result {
	curr := j.current.Add(1)
	j.mu.Lock()
	if curr > j.peak.Load() {
		j.peak.Store(curr)
	}
	j.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	j.current.Add(-1)
	return &countingResult{}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	var current, peak atomic.Int64
	var mu sync.Mutex

	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = &gatedJob{current: &current, peak: &peak, mu: &mu}
	}

	workers := 4
	results := runJobs(context.Background(), workers, jobs)

	if len(results) != 30 {
		t.Errorf("Got %d results, want 30", len(results))
	}
	if peak.Load() > int64(workers) {
		t.Errorf("Peak concurrency %d exceeded %d workers", peak.Load(), workers)
	}
}

func TestPool_CancelledContextSkipsQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var counter atomic.Int64
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = &countingJob{counter: &counter}
	}

	results := runJobs(ctx, 2, jobs)

	if counter.Load() != 0 {
		t.Errorf("Executed %d jobs after cancellation, want 0", counter.Load())
	}
	if len(results) != 0 {
		t.Errorf("Got %d results after cancellation, want 0", len(results))
	}
}

func TestPool_NoJobs(t *testing.T) {
	results := runJobs(context.Background(), 2, nil)
	if len(results) != 0 {
		t.Errorf("Got %d results, want 0", len(results))
	}
}
