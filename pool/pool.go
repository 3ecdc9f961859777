// Package pool implements the worker pool (C7): a shared LIFO task queue
// guarded by one mutex, a cooperative cancellation flag, and bounded
// retry of transient compile failures.
package pool

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/compiler"
	"github.com/evangelionxyz/ShaderMake/core/app/crash"
	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/output"
	"github.com/evangelionxyz/ShaderMake/plan"
	"github.com/evangelionxyz/ShaderMake/progress"
)

// Pool owns every piece of mutable state shared between workers: the task
// queue, the retry budget, and (indirectly, via Reporter) the progress and
// failure counters. No collection reference leaves the Pool; callers only
// see Run's return value.
type Pool struct {
	opts   *options.Options
	driver compiler.Driver
	report *progress.Reporter

	mu        sync.Mutex
	queue     []*plan.Task
	retryLeft atomic.Int64
}

// New builds a Pool that drains tasks through driver and reports through
// report. The queue starts pre-loaded with tasks, popped LIFO.
func New(opts *options.Options, driver compiler.Driver, report *progress.Reporter, tasks []*plan.Task) *Pool {
	p := &Pool{opts: opts, driver: driver, report: report, queue: append([]*plan.Task{}, tasks...)}
	p.retryLeft.Store(int64(opts.RetryCount))
	return p
}

func (p *Pool) pop() *plan.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.queue)
	if n == 0 {
		return nil
	}
	task := p.queue[n-1]
	p.queue = p.queue[:n-1]
	return task
}

func (p *Pool) push(task *plan.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, task)
}

// Concurrency returns the worker count implied by opts: 1 if serial,
// otherwise the host's logical CPU count (never less than 1).
func Concurrency(opts *options.Options, hardwareParallelism int) int {
	if opts.Serial {
		return 1
	}
	if hardwareParallelism < 1 {
		return 1
	}
	return hardwareParallelism
}

// Run drains the queue with concurrency workers, blocking until every
// worker has quiesced (queue empty or cancellation observed). It returns
// once all goroutines have exited, so blob assembly can safely read
// per-permutation artifacts from disk afterward.
func (p *Pool) Run(ctx context.Context, concurrency int) {
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		crash.Go(func() {
			defer wg.Done()
			p.worker(ctx)
		})
	}
	wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	for {
		if p.report.Terminated() || ctx.Err() != nil {
			return
		}
		task := p.pop()
		if task == nil {
			return
		}

		result, err := p.driver.Compile(ctx, task)
		if err != nil {
			p.handleFailure(ctx, task, err)
			if p.report.Terminated() {
				return
			}
			continue
		}

		if werr := p.writeArtifacts(task, result); werr != nil {
			p.report.Fail(ctx, task.Source, task.Entry, task.CombinedDefines, werr.Error())
			continue
		}
		p.report.Success(ctx, string(p.opts.Platform), task.Source, task.Entry, task.CombinedDefines)

		if p.report.Terminated() || ctx.Err() != nil {
			return
		}
	}
}

func (p *Pool) handleFailure(ctx context.Context, task *plan.Task, err error) {
	var be *builderrors.Error
	if e, ok := err.(*builderrors.Error); ok {
		be = e
	}
	// Decrement and test in one atomic step so concurrent workers cannot
	// both spend the last unit of the retry budget.
	if be != nil && be.Kind == builderrors.CompileTransient && p.retryLeft.Add(-1) >= 0 {
		p.report.RetryQueued(ctx, task.Source, task.Entry, task.CombinedDefines)
		p.push(task)
		return
	}
	p.report.Fail(ctx, task.Source, task.Entry, task.CombinedDefines, err.Error())
}

func (p *Pool) writeArtifacts(task *plan.Task, result *compiler.Result) error {
	if !result.Written {
		if (p.opts.Binary || p.opts.BinaryBlob) && result.Binary != nil {
			if err := output.WriteBinary(task.OutputPath+p.opts.OutputExt, result.Binary); err != nil {
				return err
			}
		}
		if p.opts.Header || p.opts.HeaderBlob {
			if err := output.WriteText(task.OutputPath+p.opts.OutputExt+".h", task.CombinedDefines, result.Binary); err != nil {
				return err
			}
		}
	} else if result.NeedsTextHeader {
		if err := output.WriteText(task.OutputPath+p.opts.OutputExt+".h", task.CombinedDefines, result.Binary); err != nil {
			return err
		}
	}
	if p.opts.PDB && result.PDB != nil {
		if err := output.WritePDB(filepath.Dir(task.Source), result.PDBName, result.PDB); err != nil {
			return err
		}
	}
	return nil
}
