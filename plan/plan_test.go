package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evangelionxyz/ShaderMake/config"
	"github.com/evangelionxyz/ShaderMake/includes"
	"github.com/evangelionxyz/ShaderMake/options"
)

func TestSkipDXBC(t *testing.T) {
	for _, test := range []struct {
		platform options.Platform
		profile  string
		want     bool
	}{
		{options.DXBC, "lib", true},
		{options.DXBC, "ms", true},
		{options.DXBC, "as", true},
		{options.DXBC, "ps", false},
		{options.DXIL, "lib", false},
		{options.SPIRV, "lib", false},
	} {
		if got := SkipDXBC(test.platform, test.profile); got != test.want {
			t.Errorf("SkipDXBC(%v, %q) = %v, want %v", test.platform, test.profile, got, test.want)
		}
	}
}

func TestCombineDefines(t *testing.T) {
	got := CombineDefines([]string{"BAR=2", "FOO=1"})
	if got != "BAR=2 FOO=1" {
		t.Errorf("CombineDefines = %q, want sorted %q", got, "BAR=2 FOO=1")
	}
	if got := CombineDefines(nil); got != "" {
		t.Errorf("CombineDefines(nil) = %q, want empty", got)
	}
}

func setupPlanner(t *testing.T, opts *options.Options) (*Planner, string) {
	t.Helper()
	dir := t.TempDir()
	opts.BaseDir = dir
	opts.OutputDir = filepath.Join(dir, "out")
	src := filepath.Join(dir, "a.hlsl")
	if err := os.WriteFile(src, []byte("float4 main() { return 0; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatal(err)
	}
	cache := includes.New(nil, map[string]bool{})
	return NewPlanner(opts, cache, old.Add(time.Hour)), src
}

func TestPlanEmitsTaskWhenArtifactMissing(t *testing.T) {
	opts := options.New()
	opts.Platform = options.DXIL
	opts.OutputExt = ".dxil"
	opts.Binary = true
	planner, _ := setupPlanner(t, opts)

	cl := &config.ConfigLine{Source: "a.hlsl", Profile: "ps", Entry: "main", OptimizationLevel: config.InheritOptimizationLevel, ShaderModel: "6_5"}
	if err := planner.Plan(cl); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(planner.Tasks) != 1 {
		t.Fatalf("len(Tasks) = %d, want 1", len(planner.Tasks))
	}
}

func TestPlanSkipsUpToDateArtifact(t *testing.T) {
	opts := options.New()
	opts.Platform = options.DXIL
	opts.OutputExt = ".dxil"
	opts.Binary = true
	planner, _ := setupPlanner(t, opts)

	cl := &config.ConfigLine{Source: "a.hlsl", Profile: "ps", Entry: "main", OptimizationLevel: config.InheritOptimizationLevel, ShaderModel: "6_5"}
	if err := planner.Plan(cl); err != nil {
		t.Fatalf("Plan (first pass): %v", err)
	}
	if len(planner.Tasks) != 1 {
		t.Fatalf("len(Tasks) after first pass = %d, want 1", len(planner.Tasks))
	}
	task := planner.Tasks[0]
	if err := os.WriteFile(task.OutputPath+opts.OutputExt, []byte("compiled"), 0o644); err != nil {
		t.Fatal(err)
	}

	planner.Tasks = nil
	if err := planner.Plan(cl); err != nil {
		t.Fatalf("Plan (second pass): %v", err)
	}
	if len(planner.Tasks) != 0 {
		t.Fatalf("len(Tasks) after artifact exists = %d, want 0", len(planner.Tasks))
	}
}

func TestPlanForceAlwaysRebuilds(t *testing.T) {
	opts := options.New()
	opts.Platform = options.DXIL
	opts.OutputExt = ".dxil"
	opts.Binary = true
	opts.Force = true
	planner, _ := setupPlanner(t, opts)

	cl := &config.ConfigLine{Source: "a.hlsl", Profile: "ps", Entry: "main", OptimizationLevel: config.InheritOptimizationLevel, ShaderModel: "6_5"}
	if err := planner.Plan(cl); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	task := planner.Tasks[0]
	if err := os.WriteFile(task.OutputPath+opts.OutputExt, []byte("compiled"), 0o644); err != nil {
		t.Fatal(err)
	}

	planner.Tasks = nil
	if err := planner.Plan(cl); err != nil {
		t.Fatalf("Plan (forced second pass): %v", err)
	}
	if len(planner.Tasks) != 1 {
		t.Fatalf("len(Tasks) with -force = %d, want 1", len(planner.Tasks))
	}
}

func TestPlanGroupsPermutationsIntoOneBlob(t *testing.T) {
	opts := options.New()
	opts.Platform = options.DXIL
	opts.OutputExt = ".dxil"
	opts.BinaryBlob = true
	planner, _ := setupPlanner(t, opts)

	cl1 := &config.ConfigLine{Source: "a.hlsl", Profile: "ps", Entry: "main", Defines: []string{"A=1"}, OptimizationLevel: config.InheritOptimizationLevel, ShaderModel: "6_5"}
	cl2 := &config.ConfigLine{Source: "a.hlsl", Profile: "ps", Entry: "main", Defines: []string{"A=2"}, OptimizationLevel: config.InheritOptimizationLevel, ShaderModel: "6_5"}
	if err := planner.Plan(cl1); err != nil {
		t.Fatalf("Plan cl1: %v", err)
	}
	if err := planner.Plan(cl2); err != nil {
		t.Fatalf("Plan cl2: %v", err)
	}

	blobs := planner.Blobs()
	if len(blobs) != 1 {
		t.Fatalf("len(Blobs()) = %d, want 1", len(blobs))
	}
	if len(blobs[0].Entries) != 2 {
		t.Fatalf("len(Blobs()[0].Entries) = %d, want 2", len(blobs[0].Entries))
	}
}
