package options

import (
	"os"
	"path/filepath"
	"testing"
)

func writableCompiler(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dxc")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateRequiresAnOutputMode(t *testing.T) {
	o := New()
	o.Platform = DXIL
	o.CompilerPath = writableCompiler(t)
	if err := o.Validate(); err == nil {
		t.Fatalf("Validate: expected error when no output mode is set")
	}
}

func TestValidateDefaultsOutputExt(t *testing.T) {
	o := New()
	o.Platform = SPIRV
	o.Binary = true
	o.CompilerPath = writableCompiler(t)
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.OutputExt != ".spirv" {
		t.Errorf("OutputExt = %q, want %q", o.OutputExt, ".spirv")
	}
}

func TestValidateRejectsBadShaderModel(t *testing.T) {
	o := New()
	o.Platform = DXIL
	o.Binary = true
	o.ShaderModel = "65"
	o.CompilerPath = writableCompiler(t)
	if err := o.Validate(); err == nil {
		t.Fatalf("Validate: expected error for malformed shader model")
	}
}

func TestValidateRejectsVulkanLayoutOutsideSpirv(t *testing.T) {
	o := New()
	o.Platform = DXIL
	o.Binary = true
	o.VulkanLayout = LayoutGL
	o.CompilerPath = writableCompiler(t)
	if err := o.Validate(); err == nil {
		t.Fatalf("Validate: expected error for -vulkanMemoryLayout outside SPIRV")
	}
}

func TestValidateClampsOptimizationLevel(t *testing.T) {
	o := New()
	o.Platform = DXIL
	o.Binary = true
	o.OptimizationLevel = 99
	o.CompilerPath = writableCompiler(t)
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.OptimizationLevel != 3 {
		t.Errorf("OptimizationLevel = %d, want clamped to 3", o.OptimizationLevel)
	}
}

func TestValidateRequiresCompilerUnlessUseAPI(t *testing.T) {
	o := New()
	o.Platform = DXIL
	o.Binary = true
	if err := o.Validate(); err == nil {
		t.Fatalf("Validate: expected error for missing -compiler")
	}

	o2 := New()
	o2.Platform = DXIL
	o2.Binary = true
	o2.UseAPI = true
	if err := o2.Validate(); err != nil {
		t.Fatalf("Validate with UseAPI: %v", err)
	}
}

func TestShaderModelIndex(t *testing.T) {
	o := New()
	o.ShaderModel = "6_5"
	if got := o.ShaderModelIndex(); got != 65 {
		t.Errorf("ShaderModelIndex() = %d, want 65", got)
	}
}

func TestDefaultOutputExt(t *testing.T) {
	for _, test := range []struct {
		platform Platform
		want     string
	}{
		{DXBC, ".dxbc"},
		{DXIL, ".dxil"},
		{SPIRV, ".spirv"},
	} {
		if got := DefaultOutputExt(test.platform); got != test.want {
			t.Errorf("DefaultOutputExt(%v) = %q, want %q", test.platform, got, test.want)
		}
	}
}
