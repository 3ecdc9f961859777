// Package config implements the configuration-file pipeline: line
// normalization and tokenizing (C2), brace-expansion and the conditional
// preprocessor (C3), and the per-line parser that turns one expanded line
// into a ConfigLine (C4).
package config

import (
	"regexp"
	"strings"

	"github.com/google/shlex"
)

var repeatedSpace = regexp.MustCompile(` +`)

// NormalizeLine trims, tab-expands and collapses a raw config line the way
// the lexer requires before tokenizing.
func NormalizeLine(raw string) string {
	s := strings.ReplaceAll(raw, "\t", " ")
	s = strings.TrimSpace(s)
	return repeatedSpace.ReplaceAllString(s, " ")
}

// Skip reports whether line (already normalized) carries no tokens: blank,
// or a "//" comment.
func Skip(line string) bool {
	return line == "" || strings.HasPrefix(line, "//")
}

// Tokenize splits a normalized config line into argv-style tokens,
// respecting double-quoted regions the way a shell would (space inside
// quotes is literal, quotes are stripped).
func Tokenize(line string) ([]string, error) {
	return shlex.Split(line)
}
