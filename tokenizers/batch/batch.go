// Package batch implements a batch driver: apply a tokenization function
// to a list of inputs across a worker pool, preserving input order in the
// output, while the BPE cache (the sole shared-mutable resource) serializes
// itself behind its own reader-writer lock.
//
// The worker pool defaults to runtime.NumCPU() goroutines coordinated with
// a plain sync.WaitGroup. RunWithLogger tags each call with a uuid
// correlation id logged via zap, so a slow or failing batch can be traced
// through a structured log stream.
package batch

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Func tokenizes a single input. It must be safe to call concurrently from
// multiple goroutines, which holds for this module's pipeline since the
// only mutable structure it touches (the BPE cache) is lock-protected.
type Func func(input string) (interface{}, error)

// item is one unit of work dispatched to the pool.
type item struct {
	index int
	input string
}

// outcome is one unit of work's result, tagged with its original index so
// results can be placed back in input order regardless of completion
// order.
type outcome struct {
	index int
	value interface{}
	err   error
}

// Run applies fn to every element of inputs across min(workers,
// len(inputs)) goroutines and returns results in the same order as
// inputs. workers <= 0 defaults to runtime.NumCPU(). The first error
// encountered (by input index, not completion order) is returned alongside
// the partial results collected so far; Run does not cancel in-flight work
// on error, since there is no cancellation surface.
func Run(inputs []string, workers int, fn Func) ([]interface{}, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	work := make(chan item)
	results := make(chan outcome, len(inputs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for it := range work {
				v, err := fn(it.input)
				results <- outcome{index: it.index, value: v, err: err}
			}
		}()
	}

	go func() {
		for i, in := range inputs {
			work <- item{index: i, input: in}
		}
		close(work)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]interface{}, len(inputs))
	errs := make([]error, len(inputs))
	for r := range results {
		out[r.index] = r.value
		errs[r.index] = r.err
	}
	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// RunWithLogger wraps Run with a per-call correlation id, logged at the
// start and end of the batch so a slow or failing call can be traced
// through a zap-structured log stream without threading a request id
// through every worker goroutine by hand.
func RunWithLogger(inputs []string, workers int, fn Func, logger *zap.Logger) ([]interface{}, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	logger.Debug("batch started",
		zap.String("correlation_id", id),
		zap.Int("count", len(inputs)),
		zap.Int("workers", workers),
	)
	out, err := Run(inputs, workers, fn)
	if err != nil {
		logger.Warn("batch failed",
			zap.String("correlation_id", id),
			zap.Error(err),
		)
		return out, err
	}
	logger.Debug("batch completed", zap.String("correlation_id", id))
	return out, nil
}
