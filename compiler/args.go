package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/plan"
	"github.com/google/shlex"
)

var optimizationFlags = [4]string{"-Od", "-O1", "-O2", "-O3"}

// BuildArgs synthesizes the compiler command line for task, following the
// DXC/FXC grammar or the Slang grammar depending on Options.Slang. The
// trailing source file path is always the last argument.
func BuildArgs(opts *options.Options, task *plan.Task) []string {
	if opts.Slang {
		return buildSlangArgs(opts, task)
	}
	return buildDXCArgs(opts, task)
}

func buildDXCArgs(opts *options.Options, task *plan.Task) []string {
	var args []string
	args = append(args, "-nologo")

	// A header blob is assembled from the per-permutation binaries, so it
	// needs the binary output as well.
	if opts.Binary || opts.BinaryBlob || opts.HeaderBlob {
		args = append(args, "-Fo", task.OutputPath+opts.OutputExt)
	}
	if opts.Header || opts.HeaderBlob {
		args = append(args, "-Fh", task.OutputPath+opts.OutputExt+".h", "-Vn", stemOf(task.OutputPath))
	}

	shaderModel := task.ShaderModel
	if opts.Platform == options.DXBC {
		shaderModel = "5_0"
	}
	args = append(args, "-T", task.Profile+"_"+shaderModel)
	args = append(args, "-E", task.Entry)

	for _, d := range task.Defines {
		args = append(args, "-D", d)
	}
	for _, d := range opts.Defines {
		args = append(args, "-D", d)
	}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-I", dir)
	}

	args = append(args, optimizationFlags[task.OptimizationLevel])

	if smIndex(shaderModel) >= 62 && opts.Platform != options.DXBC {
		args = append(args, "-enable-16bit-types")
	}
	if opts.WarningsAreErrors {
		args = append(args, "-WX")
	}
	if opts.AllResourcesBound {
		args = append(args, "-all_resources_bound")
	}
	if opts.MatrixRowMajor {
		args = append(args, "-Zpr")
	}
	if opts.HLSL2021 {
		args = append(args, "-HV", "2021")
	}
	if opts.PDB {
		args = append(args, "-Zi", "-Zsb")
	}
	if opts.EmbedPDB {
		args = append(args, "-Qembed_debug")
	}
	if opts.Platform != options.SPIRV && opts.StripReflection {
		args = append(args, "-Qstrip_reflect")
	}

	if opts.Platform == options.SPIRV {
		args = append(args, "-spirv")
		args = append(args, "-fspv-target-env=vulkan"+opts.VulkanVersion)
		if layout := vkLayoutFlag(opts.VulkanLayout); layout != "" {
			args = append(args, layout)
		}
		for _, ext := range opts.SpirvExtensions {
			args = append(args, "-fspv-extension="+ext)
		}
		if !opts.NoRegShifts {
			args = append(args, regShiftArgs(opts.RegShifts)...)
		}
	}
	if opts.PDB && opts.Platform != options.SPIRV {
		args = append(args, "-Fd", filepath.Join(filepath.Dir(task.OutputPath), "PDB")+string(filepath.Separator))
	}

	if opts.CompilerOptions != "" {
		if extra, err := shlex.Split(opts.CompilerOptions); err == nil {
			args = append(args, extra...)
		}
	}

	args = append(args, task.Source)
	return args
}

func buildSlangArgs(opts *options.Options, task *plan.Task) []string {
	var args []string
	if opts.SlangHLSL {
		args = append(args, "-lang", "hlsl", "-unscoped-enum")
	}
	args = append(args, "-profile", task.Profile+"_"+task.ShaderModel)
	args = append(args, "-target", string(opts.Platform))
	args = append(args, "-o", task.OutputPath+opts.OutputExt)
	if task.Profile != "lib" {
		args = append(args, "-entry", task.Entry)
	}
	for _, d := range task.Defines {
		args = append(args, "-D", d)
	}
	for _, d := range opts.Defines {
		args = append(args, "-D", d)
	}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-I", dir)
	}
	args = append(args, fmt.Sprintf("-O%d", task.OptimizationLevel))
	if opts.WarningsAreErrors {
		args = append(args, "-warnings-as-errors")
	}
	if opts.MatrixRowMajor {
		args = append(args, "-matrix-layout-row-major")
	} else {
		args = append(args, "-matrix-layout-column-major")
	}
	if opts.Platform == options.SPIRV {
		args = append(args, "-fvk-use-entrypoint-name")
		switch opts.VulkanLayout {
		case options.LayoutGL:
			args = append(args, "-fvk-use-gl-layout")
		case options.LayoutScalar:
			args = append(args, "-force-glsl-scalar-layout")
		}
		if !opts.NoRegShifts {
			args = append(args, regShiftArgs(opts.RegShifts)...)
		}
	}
	args = append(args, task.Source)
	return args
}

func vkLayoutFlag(layout options.VulkanMemoryLayout) string {
	if layout == options.LayoutNone {
		return ""
	}
	return "-fvk-use-" + string(layout) + "-layout"
}

func regShiftArgs(shifts options.RegisterShifts) []string {
	var args []string
	classes := []struct {
		flag  string
		value int
	}{
		{"t", shifts.T}, {"s", shifts.S}, {"b", shifts.B}, {"u", shifts.U},
	}
	for _, c := range classes {
		for space := 0; space < options.SpirvSpaces; space++ {
			args = append(args, fmt.Sprintf("-fvk-%s-shift", c.flag), fmt.Sprintf("%d", c.value), fmt.Sprintf("%d", space))
		}
	}
	return args
}

func smIndex(sm string) int {
	if len(sm) != 3 {
		return 0
	}
	return int(sm[0]-'0')*10 + int(sm[2]-'0')
}

func stemOf(pathNoExt string) string {
	return filepath.Base(pathNoExt)
}
