package config

import (
	"errors"
	"reflect"
	"testing"

	"github.com/evangelionxyz/ShaderMake/builderrors"
)

func feedAll(t *testing.T, e *Expander, rawLines []string) ([]string, error) {
	t.Helper()
	var out []string
	for i, raw := range rawLines {
		lines, err := e.Feed(raw, i+1)
		if err != nil {
			return out, err
		}
		for _, l := range lines {
			out = append(out, l.Text)
		}
	}
	if err := e.Done(); err != nil {
		return out, err
	}
	return out, nil
}

func TestExpanderBraceExpansion(t *testing.T) {
	e := NewExpander("shaders.cfg", nil)
	got, err := feedAll(t, e, []string{"a.hlsl -T {vs,ps} -E main"})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"a.hlsl -T vs -E main", "a.hlsl -T ps -E main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expanded = %#v, want %#v", got, want)
	}
}

func TestExpanderMultipleBraceGroups(t *testing.T) {
	e := NewExpander("shaders.cfg", nil)
	got, err := feedAll(t, e, []string{"a.hlsl -T {vs,ps} -D {FOO,BAR}"})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d expansions, want 4: %#v", len(got), got)
	}
}

func TestExpanderIfdef(t *testing.T) {
	e := NewExpander("shaders.cfg", []string{"DEBUG"})
	got, err := feedAll(t, e, []string{
		"#ifdef DEBUG",
		"a.hlsl -T ps",
		"#else",
		"b.hlsl -T ps",
		"#endif",
	})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"a.hlsl -T ps"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expanded = %#v, want %#v", got, want)
	}
}

func TestExpanderIfdefUndefined(t *testing.T) {
	e := NewExpander("shaders.cfg", nil)
	got, err := feedAll(t, e, []string{
		"#ifdef DEBUG",
		"a.hlsl -T ps",
		"#else",
		"b.hlsl -T ps",
		"#endif",
	})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"b.hlsl -T ps"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expanded = %#v, want %#v", got, want)
	}
}

func TestExpanderUnterminatedBlock(t *testing.T) {
	e := NewExpander("shaders.cfg", nil)
	if _, err := feedAll(t, e, []string{"#if 1", "a.hlsl -T ps"}); err == nil {
		t.Fatalf("Done: expected error for unterminated block")
	}
}

func TestExpanderElseWithoutIf(t *testing.T) {
	e := NewExpander("shaders.cfg", nil)
	_, err := feedAll(t, e, []string{"#else"})
	var be *builderrors.Error
	if !errors.As(err, &be) || be.Kind != builderrors.Parse {
		t.Fatalf("Feed: got %v, want a Parse error", err)
	}
}
