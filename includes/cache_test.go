package includes

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHierarchicalMTimePicksUpInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "common.hlsli"), "float4 x;")
	writeFile(t, filepath.Join(dir, "main.hlsl"), `#include "common.hlsli"`+"\nfloat4 main() { return x; }")

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "main.hlsl"), old, old); err != nil {
		t.Fatal(err)
	}

	c := New(nil, map[string]bool{})
	got, err := c.HierarchicalMTime(filepath.Join(dir, "main.hlsl"))
	if err != nil {
		t.Fatalf("HierarchicalMTime: %v", err)
	}

	includeInfo, err := os.Stat(filepath.Join(dir, "common.hlsli"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(includeInfo.ModTime()) {
		t.Errorf("HierarchicalMTime() = %v, want the include's mtime %v", got, includeInfo.ModTime())
	}
}

func TestHierarchicalMTimeToleratesCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.hlsli"), `#include "b.hlsli"`)
	writeFile(t, filepath.Join(dir, "b.hlsli"), `#include "a.hlsli"`)

	c := New(nil, map[string]bool{})
	if _, err := c.HierarchicalMTime(filepath.Join(dir, "a.hlsli")); err != nil {
		t.Fatalf("HierarchicalMTime: %v", err)
	}
}

func TestHierarchicalMTimeSkipsRelaxedInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "missing_ok.hlsli"), "")
	writeFile(t, filepath.Join(dir, "main.hlsl"), `#include "missing_ok.hlsli"`)
	// Remove the relaxed include after referencing it so the only way the
	// lookup can succeed is if it was genuinely skipped.
	if err := os.Remove(filepath.Join(dir, "missing_ok.hlsli")); err != nil {
		t.Fatal(err)
	}

	c := New(nil, map[string]bool{"missing_ok.hlsli": true})
	if _, err := c.HierarchicalMTime(filepath.Join(dir, "main.hlsl")); err != nil {
		t.Fatalf("HierarchicalMTime: %v", err)
	}
}

func TestHierarchicalMTimeResolvesViaIncludeDir(t *testing.T) {
	srcDir := t.TempDir()
	incDir := t.TempDir()
	writeFile(t, filepath.Join(incDir, "shared.hlsli"), "float4 y;")
	writeFile(t, filepath.Join(srcDir, "main.hlsl"), `#include "shared.hlsli"`)

	c := New([]string{incDir}, map[string]bool{})
	if _, err := c.HierarchicalMTime(filepath.Join(srcDir, "main.hlsl")); err != nil {
		t.Fatalf("HierarchicalMTime: %v", err)
	}
}

func TestHierarchicalMTimeMissingIncludeErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.hlsl"), `#include "nope.hlsli"`)

	c := New(nil, map[string]bool{})
	if _, err := c.HierarchicalMTime(filepath.Join(dir, "main.hlsl")); err == nil {
		t.Fatalf("HierarchicalMTime: expected error for missing include")
	}
}
