// Package plan implements the task planner (C6): for each parsed
// ConfigLine it decides whether a permutation needs rebuilding, computes
// its permutation hash and output paths, and groups permutations destined
// for the same blob.
package plan

// Task is one compile unit: a single shader permutation to hand to a
// compiler driver.
type Task struct {
	Source      string
	Profile     string
	Entry       string
	ShaderModel string
	// Defines is the per-task define list in the order the config line
	// declared it (used when synthesizing compiler arguments).
	Defines []string
	// CombinedDefines is the canonical, lexicographically-sorted rendering
	// used for hashing and blob framing.
	CombinedDefines   string
	OptimizationLevel int
	// OutputPath is the final output path without extension.
	OutputPath string
}

// BlobEntry is one permutation's contribution to a blob: its output path
// (no extension) and the combined-defines label the assembler frames it
// with.
type BlobEntry struct {
	OutputPath      string
	CombinedDefines string
}

// Blob is an ordered, named group of BlobEntries sharing one logical
// shader (same source+entry+suffix, distinct defines).
type Blob struct {
	Name    string
	Entries []BlobEntry
}
