package config

import (
	"reflect"
	"testing"

	"github.com/evangelionxyz/ShaderMake/options"
)

func TestParseLineBasic(t *testing.T) {
	opts := options.New()
	cl, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T", "ps", "-E", "PSMain", "-D", "FOO=1"}, opts)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	want := &ConfigLine{
		Source:            "a.hlsl",
		Profile:           "ps",
		Entry:             "PSMain",
		Defines:           []string{"FOO=1"},
		ShaderModel:       opts.ShaderModel,
		OptimizationLevel: InheritOptimizationLevel,
	}
	if !reflect.DeepEqual(cl, want) {
		t.Errorf("ParseLine() = %#v, want %#v", cl, want)
	}
}

func TestParseLineDefaultsEntry(t *testing.T) {
	cl, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T", "vs"}, options.New())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if cl.Entry != "main" {
		t.Errorf("Entry = %q, want %q", cl.Entry, "main")
	}
}

func TestParseLineMissingProfile(t *testing.T) {
	if _, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl"}, options.New()); err == nil {
		t.Fatalf("ParseLine: expected error for missing -T")
	}
}

func TestParseLineUnknownProfile(t *testing.T) {
	if _, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T", "bogus"}, options.New()); err == nil {
		t.Fatalf("ParseLine: expected error for unknown profile")
	}
}

func TestParseLineMissingArgument(t *testing.T) {
	if _, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T"}, options.New()); err == nil {
		t.Fatalf("ParseLine: expected error for -T with no argument")
	}
}

func TestParseLineUnrecognisedToken(t *testing.T) {
	if _, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T", "ps", "-Z"}, options.New()); err == nil {
		t.Fatalf("ParseLine: expected error for unrecognised token")
	}
}

func TestParseLineOptimizationOverride(t *testing.T) {
	cl, err := ParseLine("shaders.cfg", 1, []string{"a.hlsl", "-T", "ps", "-O", "1"}, options.New())
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if cl.OptimizationLevel != 1 {
		t.Errorf("OptimizationLevel = %d, want 1", cl.OptimizationLevel)
	}
}

func TestParseLineEmpty(t *testing.T) {
	if _, err := ParseLine("shaders.cfg", 1, nil, options.New()); err == nil {
		t.Fatalf("ParseLine: expected error for empty line")
	}
}
