// Package builderrors defines the typed error kinds the build pipeline can
// report: configuration, parse, dependency, compile (hard/transient), write
// and blob-validity failures. Callers branch on kind with errors.As rather
// than matching message strings.
package builderrors

import (
	"fmt"

	"github.com/evangelionxyz/ShaderMake/core/fault"
	"github.com/pkg/errors"
)

// Kind identifies one of the error categories a build can fail with.
type Kind fault.Const

const (
	Configuration Kind = "configuration error"
	Parse         Kind = "parse error"
	Dependency    Kind = "dependency error"
	CompileHard   Kind = "compile failure"
	CompileTransient Kind = "transient compile failure"
	Write         Kind = "write error"
	BlobValidity  Kind = "blob validity error"
)

func (k Kind) Error() string { return string(k) }

// Error is a build-pipeline error tagged with a Kind and contextual fields.
type Error struct {
	Kind Kind
	// Path is the config file, source file, or output path the error concerns.
	Path string
	// Line is a 1-based config-file line number, or 0 when not applicable.
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s(%d,0): %s: %v", e.Path, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, so errors.Is(err, SomeKind)
// works directly against a Kind value.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New wraps msg as a Kind error with no underlying cause.
func New(kind Kind, path string, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Line: line, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches kind/path/line context to an existing error.
func Wrap(kind Kind, path string, line int, err error, msg string) *Error {
	return &Error{Kind: kind, Path: path, Line: line, Err: errors.Wrap(err, msg)}
}
