// Package worker provides the concurrency layer for batch document
// analysis: a fixed-size pool plus a processor that fans source files out
// over it.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work, typically one document analysis.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	GetError() error
}

// Pool fans jobs out to a fixed set of workers. Jobs run with the context
// passed to Start; cancelling it stops the pool between jobs, and jobs
// still queued are drained without executing.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers),
		results: make(chan Result, workers),
	}
}

// Start launches the workers. Call exactly once, before Submit.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if ctx.Err() != nil {
					continue
				}
				p.results <- job.Execute(ctx)
			}
		}()
	}
}

// Submit queues one job. Blocks while all workers are busy and the queue
// is full, so producers pace themselves to the pool.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Close marks the job stream complete. No Submit may follow.
func (p *Pool) Close() {
	close(p.jobs)
}

// Wait drains results until every submitted job has finished, then returns
// them. Safe to call while submission is still in flight on another
// goroutine, as long as Close eventually follows.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	var out []Result
	for r := range p.results {
		out = append(out, r)
	}
	return out
}
