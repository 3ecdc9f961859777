// Package progress implements the percentage/failure reporter (C12): a set
// of atomic counters plus the success/retry/fail line formats, routed
// through core/log.
package progress

import (
	"context"
	"sync/atomic"

	"github.com/evangelionxyz/ShaderMake/core/log"
)

// Reporter tracks build-wide progress and failure counters. All fields are
// accessed concurrently from worker goroutines and must only be touched
// through its methods.
type Reporter struct {
	originalTaskCount int64
	processedTaskCount atomic.Int64
	failedTaskCount    atomic.Int64
	terminate          atomic.Bool
	continueOnError    bool
}

// New creates a Reporter for a run of originalTaskCount tasks.
func New(originalTaskCount int, continueOnError bool) *Reporter {
	return &Reporter{originalTaskCount: int64(originalTaskCount), continueOnError: continueOnError}
}

// Terminated reports whether a hard failure (or external cancellation) has
// set the cancellation flag.
func (r *Reporter) Terminated() bool { return r.terminate.Load() }

// FailedCount returns the number of hard failures recorded so far.
func (r *Reporter) FailedCount() int64 { return r.failedTaskCount.Load() }

// RequestCancel sets the cancellation flag directly, used for external
// signals (SIGINT) in addition to hard compile failures.
func (r *Reporter) RequestCancel() { r.terminate.Store(true) }

func (r *Reporter) percent() float64 {
	if r.originalTaskCount == 0 {
		return 100
	}
	return 100 * float64(r.processedTaskCount.Load()) / float64(r.originalTaskCount)
}

// Success records one completed task and prints its progress line.
func (r *Reporter) Success(ctx context.Context, platform, source, entry, defines string) {
	r.processedTaskCount.Add(1)
	log.I(ctx, "[%5.1f%%] %s %s {%s} {%s}", r.percent(), platform, source, entry, defines)
}

// RetryQueued prints the retry-queued line for a task that was re-enqueued
// after a transient failure.
func (r *Reporter) RetryQueued(ctx context.Context, source, entry, defines string) {
	log.W(ctx, "[ RETRY-QUEUED ] %s {%s} {%s}", source, entry, defines)
}

// Fail records a hard failure and prints its line. Unless continueOnError
// is set, this also requests cancellation of the whole run.
func (r *Reporter) Fail(ctx context.Context, source, entry, defines, message string) {
	log.E(ctx, "[ FAIL ] %s {%s} {%s} %s", source, entry, defines, message)
	if r.continueOnError {
		r.failedTaskCount.Add(1)
	} else {
		r.terminate.Store(true)
		r.failedTaskCount.Add(1)
	}
}
