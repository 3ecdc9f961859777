// Package compiler implements the compiler driver abstraction (C8/C9):
// argument synthesis shared by both variants, a subprocess driver that
// shells out to the configured compiler binary, and an in-process driver
// that validates the compiler once per pool and runs it once per task,
// one task at a time, under a shared mutex.
package compiler

import (
	"context"

	"github.com/evangelionxyz/ShaderMake/plan"
)

// Result is the outcome of a single successful compile.
type Result struct {
	Binary []byte
	// PDB and PDBName are set only when Options.PDB is enabled and the
	// compiler produced a debug side-file.
	PDB     []byte
	PDBName string

	// Written is true when the driver itself already placed the requested
	// binary/header artifacts at Task.OutputPath (the subprocess variant's
	// -Fo/-Fh/-o flags did this); the worker then skips C10 writing for
	// those artifacts and only has to act on NeedsTextHeader/PDB.
	Written bool
	// NeedsTextHeader is true when a header artifact was requested but the
	// compiler that ran cannot emit one directly (Slang): the worker must
	// read Binary back and synthesize the text header itself.
	NeedsTextHeader bool
}

// Driver is the shared contract between the subprocess and in-process
// compiler variants: compile one Task, returning its output bytes or an
// error. A transient error (spawn failure, missing shell) is reported as a
// *builderrors.Error with Kind builderrors.CompileTransient so the pool can
// distinguish it from a hard compile failure.
type Driver interface {
	Compile(ctx context.Context, task *plan.Task) (*Result, error)
	// Close releases any resources the driver holds (e.g. a persistent
	// in-process compiler handle). Safe to call once after the pool drains.
	Close() error
}
