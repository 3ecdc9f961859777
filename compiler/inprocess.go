package compiler

import (
	"context"
	"os/exec"
	"sync"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/plan"
)

// InProcessDriver models the in-process API variant (C9): a single
// compiler handle obtained once per worker pool and shared, under a mutex,
// across every task — the same shape gapid's gapis/shadertools uses for
// its cgo-backed SPIRV-Tools handle. This repository cannot link the real
// DXC/D3DCompiler/SPIRV-Tools native libraries, so the "handle" is the
// validated compiler executable, invoked once per task with the arguments
// BuildArgs gives SubprocessDriver and serialized through the same mutex a
// real shared interface would require. The compiler itself writes to the
// output paths in those arguments; the driver reads the binary back and
// returns it with Result.Written false, so the worker then writes the
// requested artifacts again through the output package.
type InProcessDriver struct {
	opts *options.Options

	once        sync.Once
	constructErr error

	mu sync.Mutex
}

// NewInProcessDriver builds a Driver that validates the compiler lazily,
// on first use, and reports that failure as fatal thereafter.
func NewInProcessDriver(opts *options.Options) *InProcessDriver {
	return &InProcessDriver{opts: opts}
}

func (d *InProcessDriver) Close() error { return nil }

// construct validates that the configured compiler can be loaded exactly
// once. A failure here is fatal and single-reported: every subsequent call
// returns the same construction error without retrying it.
func (d *InProcessDriver) construct() error {
	d.once.Do(func() {
		if _, err := exec.LookPath(d.opts.CompilerPath); err != nil {
			d.constructErr = builderrors.Wrap(builderrors.CompileHard, d.opts.CompilerPath, 0, err,
				"failed to construct in-process compiler interface")
		}
	})
	return d.constructErr
}

func (d *InProcessDriver) Compile(ctx context.Context, task *plan.Task) (*Result, error) {
	if err := d.construct(); err != nil {
		return nil, err
	}

	args := BuildArgs(d.opts, task)

	d.mu.Lock()
	cmd := exec.CommandContext(ctx, d.opts.CompilerPath, args...)
	out, err := cmd.CombinedOutput()
	d.mu.Unlock()

	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, builderrors.Wrap(builderrors.CompileTransient, task.Source, 0, err, string(out))
		}
		return nil, builderrors.Wrap(builderrors.CompileHard, task.Source, 0, err, string(out))
	}

	data, rerr := readFile(task.OutputPath + d.opts.OutputExt)
	if rerr != nil {
		return nil, builderrors.Wrap(builderrors.CompileHard, task.Source, 0, rerr, "no output object returned")
	}
	return &Result{Binary: data, Written: false}, nil
}
