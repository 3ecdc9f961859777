package compiler

import (
	"context"
	"os/exec"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/core/os/shell"
	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/plan"
)

// SubprocessDriver invokes the configured compiler binary once per task,
// capturing its combined stdout/stderr, per §4.7.
type SubprocessDriver struct {
	opts *options.Options
}

// NewSubprocessDriver builds a Driver that shells out to opts.CompilerPath.
func NewSubprocessDriver(opts *options.Options) *SubprocessDriver {
	return &SubprocessDriver{opts: opts}
}

func (d *SubprocessDriver) Close() error { return nil }

func (d *SubprocessDriver) Compile(ctx context.Context, task *plan.Task) (*Result, error) {
	args := BuildArgs(d.opts, task)
	cmd := shell.Command(d.opts.CompilerPath, args...).Verbose()
	output, err := cmd.Call(ctx)
	if err != nil {
		if transient(err) {
			return nil, builderrors.Wrap(builderrors.CompileTransient, task.Source, 0, err, output)
		}
		return nil, builderrors.Wrap(builderrors.CompileHard, task.Source, 0, err, output)
	}

	if d.opts.Slang {
		// Slang always writes its binary via -o; it cannot emit a header
		// directly, so the worker must synthesize one from the binary it
		// just produced when a header artifact was requested.
		data, rerr := readFile(task.OutputPath + d.opts.OutputExt)
		if rerr != nil {
			return nil, builderrors.Wrap(builderrors.CompileHard, task.Source, 0, rerr, "compiler exited 0 but produced no output")
		}
		needsHeader := d.opts.Header || d.opts.HeaderBlob
		return &Result{Binary: data, Written: true, NeedsTextHeader: needsHeader}, nil
	}

	// DXC/FXC already wrote whichever of -Fo/-Fh were requested.
	data, _ := readFile(task.OutputPath + d.opts.OutputExt)
	if (d.opts.Binary || d.opts.BinaryBlob) && data == nil {
		return nil, builderrors.New(builderrors.CompileHard, task.Source, 0, "compiler exited 0 but produced no output")
	}
	return &Result{Binary: data, Written: true}, nil
}

// transient classifies a subprocess launch/exit failure as retry-eligible:
// the process never started (a child-process spawn error, analogous to
// ECHILD) or the shell reported "command not found" (exit status 127).
func transient(err error) bool {
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		return exitErr.ExitCode() == 127
	}
	var pathErr *exec.Error
	return asExecError(err, &pathErr)
}

func asExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return asExitError(u.Unwrap(), target)
	}
	return false
}

func asExecError(err error, target **exec.Error) bool {
	if e, ok := err.(*exec.Error); ok {
		*target = e
		return true
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return asExecError(u.Unwrap(), target)
	}
	return false
}
