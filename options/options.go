// Package options defines the process-wide configuration for a build: the
// immutable Options value constructed once from CLI flags and validated
// before planning begins.
package options

import (
	"fmt"
	"os"
	"regexp"

	"github.com/evangelionxyz/ShaderMake/builderrors"
)

// Platform is a shader compilation target.
type Platform string

const (
	DXBC  Platform = "DXBC"
	DXIL  Platform = "DXIL"
	SPIRV Platform = "SPIRV"
)

// CompilerKind is the shader compiler family driving a Platform.
type CompilerKind string

const (
	FXC   CompilerKind = "FXC"
	DXC   CompilerKind = "DXC"
	Slang CompilerKind = "SLANG"
)

// VulkanMemoryLayout selects the resource layout convention for SPIR-V output.
type VulkanMemoryLayout string

const (
	LayoutNone   VulkanMemoryLayout = ""
	LayoutDX     VulkanMemoryLayout = "dx"
	LayoutGL     VulkanMemoryLayout = "gl"
	LayoutScalar VulkanMemoryLayout = "scalar"
)

// SpirvSpaces is the fixed number of register spaces register-shift
// arguments are synthesized across.
const SpirvSpaces = 8

// RegisterShifts holds the SPIR-V binding-shift base value for each HLSL
// register class.
type RegisterShifts struct {
	T, S, B, U int
}

// Options is the immutable, validated configuration for one build.
type Options struct {
	Platform       Platform
	Compiler       CompilerKind
	CompilerPath   string
	BaseDir        string
	ShaderModel    string
	VulkanVersion  string
	OutputDir      string
	OutputExt      string
	VulkanLayout   VulkanMemoryLayout
	IncludeDirs    []string
	RelaxedIncludes map[string]bool
	Defines        []string
	SpirvExtensions []string
	CompilerOptions string
	RegShifts      RegisterShifts

	OptimizationLevel int
	RetryCount        int

	Serial            bool
	Flatten           bool
	Binary            bool
	Header            bool
	BinaryBlob        bool
	HeaderBlob        bool
	ContinueOnError   bool
	WarningsAreErrors bool
	AllResourcesBound bool
	PDB               bool
	EmbedPDB          bool
	StripReflection   bool
	MatrixRowMajor    bool
	HLSL2021          bool
	Verbose           bool
	UseAPI            bool
	Slang             bool
	SlangHLSL         bool
	NoRegShifts       bool
	Force             bool
	IgnoreConfigDir   bool
	Colorize          bool

	ConfigPath string
}

var shaderModelPattern = regexp.MustCompile(`^[0-9]_[0-9]$`)

// DefaultOutputExt returns the conventional output extension for platform.
func DefaultOutputExt(p Platform) string {
	switch p {
	case DXBC:
		return ".dxbc"
	case DXIL:
		return ".dxil"
	case SPIRV:
		return ".spirv"
	default:
		return ""
	}
}

// New returns an Options populated with every documented default.
func New() *Options {
	return &Options{
		ShaderModel:   "6_5",
		VulkanVersion: "1.3",
		SpirvExtensions: []string{"SPV_EXT_descriptor_indexing", "KHR"},
		RegShifts:     RegisterShifts{T: 0, S: 128, B: 256, U: 384},
		OptimizationLevel: 3,
		RetryCount:    10,
		RelaxedIncludes: map[string]bool{},
	}
}

// Validate checks every invariant from the data model and fills in any
// platform-derived default (output extension) that depends on a flag set
// after New. It must be called exactly once, after all flags are applied.
func (o *Options) Validate() error {
	if !(o.Binary || o.Header || o.BinaryBlob || o.HeaderBlob) {
		return builderrors.New(builderrors.Configuration, "", 0,
			"at least one of -binary, -header, -binaryBlob, -headerBlob must be set")
	}
	if !shaderModelPattern.MatchString(o.ShaderModel) {
		return builderrors.New(builderrors.Configuration, "", 0,
			"shader model %q must match X_Y", o.ShaderModel)
	}
	switch o.Platform {
	case DXBC, DXIL, SPIRV:
	default:
		return builderrors.New(builderrors.Configuration, "", 0,
			"unrecognised platform %q", o.Platform)
	}
	if o.VulkanLayout != LayoutNone && o.Platform != SPIRV {
		return builderrors.New(builderrors.Configuration, "", 0,
			"-vulkanMemoryLayout is only meaningful for the SPIRV platform")
	}
	if o.RetryCount < 0 {
		return builderrors.New(builderrors.Configuration, "", 0,
			"-retryCount must be >= 0, got %d", o.RetryCount)
	}
	if !o.UseAPI {
		if o.CompilerPath == "" {
			return builderrors.New(builderrors.Configuration, "", 0, "-compiler path is required")
		}
		if _, err := os.Stat(o.CompilerPath); err != nil {
			return builderrors.Wrap(builderrors.Configuration, "", 0, err,
				fmt.Sprintf("compiler %q is not accessible", o.CompilerPath))
		}
	}
	if o.OutputExt == "" {
		o.OutputExt = DefaultOutputExt(o.Platform)
	}
	if o.OptimizationLevel < 0 {
		o.OptimizationLevel = 0
	}
	if o.OptimizationLevel > 3 {
		o.OptimizationLevel = 3
	}
	return nil
}

// ShaderModelIndex returns the shader model as `major*10+minor`, used to
// gate shader-model-specific compiler flags (e.g. 16-bit types at >= 6.2).
func (o *Options) ShaderModelIndex() int {
	if len(o.ShaderModel) != 3 {
		return 0
	}
	major := int(o.ShaderModel[0] - '0')
	minor := int(o.ShaderModel[2] - '0')
	return major*10 + minor
}
