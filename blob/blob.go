// Package blob implements the blob assembler (C11): it concatenates the
// binaries of every permutation of a logical shader, emitting either a raw
// binary blob or a text byte-array header. The binary blob is the
// permutations' bytes back to back, in planning order, with no file header
// and no per-permutation framing or defines label; the text blob is one
// byte array over the same bytes, under a preamble whose label is "blob".
package blob

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/output"
	"github.com/evangelionxyz/ShaderMake/plan"
)

// Assemble writes the binary and/or text blob for b, per Options'
// binaryBlob/headerBlob selection. Single-entry blobs whose one entry has
// no defines are skipped: there is nothing to disambiguate, the
// individually-compiled artifact already serves as the blob.
func Assemble(opts *options.Options, b *plan.Blob) error {
	if len(b.Entries) == 1 && b.Entries[0].CombinedDefines == "" {
		return nil
	}

	for _, e := range b.Entries {
		if e.CombinedDefines == "" {
			return builderrors.New(builderrors.BlobValidity, b.Name, 0,
				"blob %q has a permutation with no defines alongside others with defines", b.Name)
		}
	}

	// b.Name is the blob base path (output directory plus shader base
	// name, with no permutation hash) computed once by the planner and
	// shared by every entry's sibling permutations.
	basePath := b.Name

	if opts.BinaryBlob {
		if err := assembleBinary(basePath+opts.OutputExt, b, opts.OutputExt); err != nil {
			return err
		}
	}
	if opts.HeaderBlob {
		if err := assembleText(basePath+opts.OutputExt+".h", b, opts.OutputExt); err != nil {
			return err
		}
	}
	if !opts.Binary {
		removeIntermediates(b, opts.OutputExt)
	}
	return nil
}

func assembleBinary(path string, b *plan.Blob, ext string) error {
	f, err := os.Create(path)
	if err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "creating blob")
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, e := range b.Entries {
		data, err := os.ReadFile(e.OutputPath + ext)
		if err != nil {
			return builderrors.Wrap(builderrors.Write, e.OutputPath, 0, err, "reading permutation for blob")
		}
		if _, err := w.Write(data); err != nil {
			return builderrors.Wrap(builderrors.Write, path, 0, err, "appending permutation")
		}
	}
	return w.Flush()
}

func assembleText(path string, b *plan.Blob, ext string) error {
	f, err := os.Create(path)
	if err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "creating blob header")
	}
	defer f.Close()

	name := filepath.Base(b.Name)
	if err := output.WriteTextPreamble(f, "blob", name); err != nil {
		return err
	}
	for _, e := range b.Entries {
		data, err := os.ReadFile(e.OutputPath + ext)
		if err != nil {
			return builderrors.Wrap(builderrors.Write, e.OutputPath, 0, err, "reading permutation for blob header")
		}
		if err := output.WriteTextBody(f, data); err != nil {
			return err
		}
	}
	return output.WriteTextEpilog(f)
}

func removeIntermediates(b *plan.Blob, ext string) {
	for _, e := range b.Entries {
		os.Remove(e.OutputPath + ext)
	}
}
