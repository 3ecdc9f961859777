// Package output implements the artifact writer (C10): raw binary output,
// a text byte-array header, and PDB side-file placement.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evangelionxyz/ShaderMake/builderrors"
)

const textWrapColumns = 128

// WriteBinary writes data verbatim to path.
func WriteBinary(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "writing binary artifact")
	}
	return nil
}

// stem derives the C identifier used to name the byte array, from a
// filesystem path with no extension.
func stem(pathNoExt string) string {
	base := filepath.Base(pathNoExt)
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, base)
}

// WriteText writes the text-header variant: a preamble declaring a
// `const uint8_t <stem>[]`, the byte values wrapped at ~128 columns, and an
// epilog closing the array.
func WriteText(path string, combinedDefines string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "creating text artifact")
	}
	defer f.Close()
	if err := WriteTextPreamble(f, combinedDefines, stem(strings.TrimSuffix(path, filepath.Ext(path)))); err != nil {
		return err
	}
	if err := WriteTextBody(f, data); err != nil {
		return err
	}
	return WriteTextEpilog(f)
}

// WriteTextPreamble writes the `// {defines}\nconst uint8_t name[] = {`
// header line shared by the per-task text writer and the blob text writer.
func WriteTextPreamble(w io.Writer, combinedDefines, name string) error {
	_, err := fmt.Fprintf(w, "// {%s}\nconst uint8_t %s[] = {", combinedDefines, name)
	if err != nil {
		return builderrors.Wrap(builderrors.Write, "", 0, err, "writing preamble")
	}
	return nil
}

// WriteTextBody appends data as comma-separated decimal bytes, wrapping
// each source line at roughly 128 columns.
func WriteTextBody(w io.Writer, data []byte) error {
	var line strings.Builder
	for _, b := range data {
		tok := strconv.Itoa(int(b)) + ","
		if line.Len()+len(tok)+1 > textWrapColumns {
			if _, err := w.Write([]byte("\n" + line.String())); err != nil {
				return builderrors.Wrap(builderrors.Write, "", 0, err, "writing body")
			}
			line.Reset()
		}
		line.WriteString(tok)
	}
	if line.Len() > 0 {
		if _, err := w.Write([]byte("\n" + line.String())); err != nil {
			return builderrors.Wrap(builderrors.Write, "", 0, err, "writing body")
		}
	}
	return nil
}

// WriteTextEpilog closes the byte-array declaration opened by
// WriteTextPreamble.
func WriteTextEpilog(w io.Writer) error {
	if _, err := w.Write([]byte("\n};\n")); err != nil {
		return builderrors.Wrap(builderrors.Write, "", 0, err, "writing epilog")
	}
	return nil
}

// WritePDB writes a debug-info blob to <sourceDir>/PDB/<suggestedName>.
func WritePDB(sourceDir, suggestedName string, data []byte) error {
	path := filepath.Join(sourceDir, "PDB", suggestedName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "creating PDB directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return builderrors.Wrap(builderrors.Write, path, 0, err, "writing PDB artifact")
	}
	return nil
}
