package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/config"
	"github.com/evangelionxyz/ShaderMake/includes"
	"github.com/evangelionxyz/ShaderMake/options"
)

// SkipDXBC reports whether a ConfigLine must be silently skipped because
// its profile has no meaning under the DXBC platform.
func SkipDXBC(platform options.Platform, profile string) bool {
	if platform != options.DXBC {
		return false
	}
	switch profile {
	case "lib", "ms", "as":
		return true
	default:
		return false
	}
}

// CombineDefines renders defines into the canonical, lexicographically
// sorted, single-space-separated form used for hashing and blob framing.
func CombineDefines(defines []string) string {
	if len(defines) == 0 {
		return ""
	}
	sorted := append([]string{}, defines...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// shaderBaseName derives the shader base name from the source path and the
// per-line/global flatten settings, per §4.5 step 3.
func shaderBaseName(cl *config.ConfigLine, opts *options.Options) string {
	name := cl.Source
	for strings.HasPrefix(name, "../") {
		name = name[len("../"):]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if opts.Flatten || cl.OutputDir != "" {
		name = filepath.Base(name)
	}
	if cl.Entry != "main" {
		name += "_" + cl.Entry
	}
	if cl.OutputSuffix != "" {
		name += cl.OutputSuffix
	}
	return name
}

// Planner accumulates Tasks and Blobs across the whole config file.
type Planner struct {
	opts       *options.Options
	cache      *includes.Cache
	configTime time.Time

	Tasks []*Task
	blobs map[string]*Blob
	order []string
}

// NewPlanner creates a Planner bound to opts, an include timestamp cache,
// and the effective config timestamp (max of config file and executable
// mtime, per §6).
func NewPlanner(opts *options.Options, cache *includes.Cache, configTime time.Time) *Planner {
	return &Planner{opts: opts, cache: cache, configTime: configTime, blobs: map[string]*Blob{}}
}

// Blobs returns the accumulated blob groups in the order their first entry
// was planned.
func (p *Planner) Blobs() []*Blob {
	out := make([]*Blob, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.blobs[name])
	}
	return out
}

func (p *Planner) artifactPaths(cl *config.ConfigLine, permutationPath, blobBasePath string) []string {
	var paths []string
	if p.opts.Binary {
		paths = append(paths, permutationPath+p.opts.OutputExt)
	}
	if p.opts.Header {
		paths = append(paths, permutationPath+p.opts.OutputExt+".h")
	}
	if p.opts.BinaryBlob {
		paths = append(paths, blobBasePath+p.opts.OutputExt)
	}
	if p.opts.HeaderBlob {
		paths = append(paths, blobBasePath+p.opts.OutputExt+".h")
	}
	return paths
}

// Plan processes one parsed ConfigLine: it may silently skip it (DXBC
// profile exclusion), decide it is already up to date (no Task emitted),
// or emit a Task and, if blobbing is enabled, a BlobEntry.
func (p *Planner) Plan(cl *config.ConfigLine) error {
	if SkipDXBC(p.opts.Platform, cl.Profile) {
		return nil
	}

	combined := CombineDefines(cl.Defines)
	base := shaderBaseName(cl, p.opts)

	permutationName := base
	if combined != "" {
		permutationName += fmt.Sprintf("_%08X", PermutationHash(combined))
	}

	outDir := p.opts.OutputDir
	if cl.OutputDir != "" {
		outDir = filepath.Join(outDir, cl.OutputDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return builderrors.Wrap(builderrors.Write, outDir, 0, err, "creating output directory")
	}
	if p.opts.PDB {
		if err := os.MkdirAll(filepath.Join(outDir, "PDB"), 0o755); err != nil {
			return builderrors.Wrap(builderrors.Write, outDir, 0, err, "creating PDB directory")
		}
	}

	permutationPath := filepath.Join(outDir, permutationName)
	blobBasePath := filepath.Join(outDir, base)

	build := p.opts.Force
	if !build {
		artifacts := p.artifactPaths(cl, permutationPath, blobBasePath)
		outputTime, ok := minMTime(artifacts)
		if !ok {
			build = true
		} else {
			srcTime, err := p.cache.HierarchicalMTime(filepath.Join(p.opts.BaseDir, cl.Source))
			if err != nil {
				return err
			}
			latestSource := srcTime
			if p.configTime.After(latestSource) {
				latestSource = p.configTime
			}
			if !latestSource.Before(outputTime) {
				build = true
			}
		}
	}

	level := cl.OptimizationLevel
	if level == config.InheritOptimizationLevel {
		level = p.opts.OptimizationLevel
	}
	if level > 3 {
		level = 3
	}

	if build {
		task := &Task{
			Source:            filepath.Join(p.opts.BaseDir, cl.Source),
			Profile:           cl.Profile,
			Entry:             cl.Entry,
			ShaderModel:       cl.ShaderModel,
			Defines:           cl.Defines,
			CombinedDefines:   combined,
			OptimizationLevel: level,
			OutputPath:        permutationPath,
		}
		p.Tasks = append(p.Tasks, task)
	}

	if p.opts.BinaryBlob || p.opts.HeaderBlob {
		blob, ok := p.blobs[blobBasePath]
		if !ok {
			blob = &Blob{Name: blobBasePath}
			p.blobs[blobBasePath] = blob
			p.order = append(p.order, blobBasePath)
		}
		blob.Entries = append(blob.Entries, BlobEntry{OutputPath: permutationPath, CombinedDefines: combined})
	}

	return nil
}

func minMTime(paths []string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, false
		}
		if !found || info.ModTime().Before(best) {
			best = info.ModTime()
			found = true
		}
	}
	return best, found
}
