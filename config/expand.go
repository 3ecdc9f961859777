package config

import (
	"strings"

	"github.com/evangelionxyz/ShaderMake/builderrors"
)

// Line is one fully expanded config line together with the 1-based line
// number of the (pre-expansion) source line it came from, for error
// reporting.
type Line struct {
	Text string
	No   int
}

// Expander runs the conditional preprocessor and brace expansion over a
// raw config file's lines.
type Expander struct {
	configPath string
	defines    map[string]bool
	blocks     []bool
}

// NewExpander builds an Expander that evaluates #ifdef against the given
// set of globally-defined macro names.
func NewExpander(configPath string, globalDefines []string) *Expander {
	defined := map[string]bool{}
	for _, d := range globalDefines {
		name := d
		if i := strings.IndexByte(d, '='); i >= 0 {
			name = d[:i]
		}
		defined[name] = true
	}
	return &Expander{configPath: configPath, defines: defined, blocks: []bool{true}}
}

func (e *Expander) active() bool { return e.blocks[len(e.blocks)-1] }

// Feed processes one raw (already normalized) config line, returning the
// zero or more expanded lines it produces once brace expansion has run.
// no is the 1-based source line number, used only for error reporting.
func (e *Expander) Feed(raw string, no int) ([]Line, error) {
	switch {
	case strings.HasPrefix(raw, "#ifdef "):
		name := strings.TrimSpace(raw[len("#ifdef "):])
		e.blocks = append(e.blocks, e.active() && e.defines[name])
		return nil, nil
	case raw == "#if 1":
		e.blocks = append(e.blocks, e.active())
		return nil, nil
	case raw == "#if 0":
		e.blocks = append(e.blocks, false)
		return nil, nil
	case raw == "#else":
		if len(e.blocks) < 2 {
			return nil, builderrors.New(builderrors.Parse, e.configPath, no, "#else without matching #if")
		}
		parent := e.blocks[len(e.blocks)-2]
		if parent {
			e.blocks[len(e.blocks)-1] = !e.blocks[len(e.blocks)-1]
		}
		return nil, nil
	case raw == "#endif":
		if len(e.blocks) < 2 {
			return nil, builderrors.New(builderrors.Parse, e.configPath, no, "#endif without matching #if")
		}
		e.blocks = e.blocks[:len(e.blocks)-1]
		return nil, nil
	default:
		if !e.active() || Skip(raw) {
			return nil, nil
		}
		expanded, err := expandBraces(raw)
		if err != nil {
			return nil, builderrors.Wrap(builderrors.Parse, e.configPath, no, err, "brace expansion failed")
		}
		lines := make([]Line, len(expanded))
		for i, text := range expanded {
			lines[i] = Line{Text: text, No: no}
		}
		return lines, nil
	}
}

// Done reports an error if the block stack was left unbalanced (an #if
// with no matching #endif) once the whole file has been fed.
func (e *Expander) Done() error {
	if len(e.blocks) != 1 {
		return builderrors.New(builderrors.Parse, e.configPath, 0, "unterminated #if block")
	}
	return nil
}

// expandBraces expands the first (leftmost, non-nested) "{a,b,c}" group on
// line into N rewritten lines, recursing depth-first until no braces
// remain.
func expandBraces(line string) ([]string, error) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		return []string{line}, nil
	}
	close := strings.IndexByte(line[open:], '}')
	if close < 0 {
		return nil, builderrors.New(builderrors.Parse, "", 0, "unbalanced '{' in %q", line)
	}
	close += open
	prefix, suffix := line[:open], line[close+1:]
	choices := strings.Split(line[open+1:close], ",")

	var out []string
	for _, choice := range choices {
		rewritten := prefix + choice + suffix
		expanded, err := expandBraces(rewritten)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}
