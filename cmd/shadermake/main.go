// Command shadermake drives the shader build pipeline end to end: it
// parses the CLI surface into an Options, expands and plans the config
// file, runs the worker pool, assembles blobs, and reports the final
// summary and exit code.
package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/evangelionxyz/ShaderMake/blob"
	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/compiler"
	"github.com/evangelionxyz/ShaderMake/config"
	"github.com/evangelionxyz/ShaderMake/core/app"
	"github.com/evangelionxyz/ShaderMake/core/log"
	"github.com/evangelionxyz/ShaderMake/includes"
	"github.com/evangelionxyz/ShaderMake/options"
	"github.com/evangelionxyz/ShaderMake/plan"
	"github.com/evangelionxyz/ShaderMake/pool"
	"github.com/evangelionxyz/ShaderMake/progress"
	"github.com/spf13/cobra"
)

func main() {
	app.Run(run)
}

func run(ctx context.Context) error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	applyEnvironmentDefaults(opts)

	if err := opts.Validate(); err != nil {
		return err
	}

	start := time.Now()
	configTime, err := effectiveConfigTime(opts.ConfigPath)
	if err != nil {
		return err
	}

	tasks, blobs, err := planAll(opts, configTime)
	if err != nil {
		return err
	}

	report := progress.New(len(tasks), opts.ContinueOnError)

	var driver compiler.Driver
	if opts.UseAPI {
		driver = compiler.NewInProcessDriver(opts)
	} else {
		driver = compiler.NewSubprocessDriver(opts)
	}
	defer driver.Close()

	p := pool.New(opts, driver, report, tasks)
	concurrency := pool.Concurrency(opts, runtime.NumCPU())
	p.Run(ctx, concurrency)
	if ctx.Err() != nil {
		// An interrupt cancels ctx; record it as a cancellation of the run.
		report.RequestCancel()
	}

	if !report.Terminated() {
		for _, b := range blobs {
			if err := blob.Assemble(opts, b); err != nil {
				if be, ok := err.(*builderrors.Error); ok && be.Kind == builderrors.BlobValidity && opts.ContinueOnError {
					log.W(ctx, "%v", err)
					continue
				}
				return err
			}
		}
	}

	elapsed := time.Since(start)
	if report.FailedCount() > 0 {
		log.E(ctx, "%d task(s) failed", report.FailedCount())
	} else {
		log.I(ctx, "%d task(s) compiled", len(tasks))
	}
	log.I(ctx, "done in %v", elapsed)

	if report.Terminated() || report.FailedCount() > 0 {
		os.Exit(1)
	}
	return nil
}

// planAll reads, expands, parses and plans the whole config file,
// returning the Tasks and Blob groups the worker pool and blob assembler
// will consume.
func planAll(opts *options.Options, configTime time.Time) ([]*plan.Task, []*plan.Blob, error) {
	f, err := os.Open(opts.ConfigPath)
	if err != nil {
		return nil, nil, builderrors.Wrap(builderrors.Dependency, opts.ConfigPath, 0, err, "opening config file")
	}
	defer f.Close()

	cache := includes.New(opts.IncludeDirs, opts.RelaxedIncludes)
	planner := plan.NewPlanner(opts, cache, configTime)
	expander := config.NewExpander(opts.ConfigPath, opts.Defines)

	scanner := bufio.NewScanner(f)
	no := 0
	for scanner.Scan() {
		no++
		normalized := config.NormalizeLine(scanner.Text())
		if config.Skip(normalized) {
			continue
		}
		lines, err := expander.Feed(normalized, no)
		if err != nil {
			return nil, nil, err
		}
		for _, line := range lines {
			tokens, err := config.Tokenize(line.Text)
			if err != nil {
				return nil, nil, builderrors.Wrap(builderrors.Parse, opts.ConfigPath, line.No, err, "tokenizing")
			}
			cl, err := config.ParseLine(opts.ConfigPath, line.No, tokens, opts)
			if err != nil {
				return nil, nil, err
			}
			if err := planner.Plan(cl); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, builderrors.Wrap(builderrors.Dependency, opts.ConfigPath, 0, err, "reading config file")
	}
	if err := expander.Done(); err != nil {
		return nil, nil, err
	}

	return planner.Tasks, planner.Blobs(), nil
}

// effectiveConfigTime is max(mtime(configFile), mtime(this executable)): a
// rebuild of the tool itself forces every permutation to rebuild.
func effectiveConfigTime(configPath string) (time.Time, error) {
	cfgInfo, err := os.Stat(configPath)
	if err != nil {
		return time.Time{}, builderrors.Wrap(builderrors.Configuration, configPath, 0, err, "config file")
	}
	t := cfgInfo.ModTime()
	if exe, err := os.Executable(); err == nil {
		if exeInfo, err := os.Stat(exe); err == nil && exeInfo.ModTime().After(t) {
			t = exeInfo.ModTime()
		}
	}
	return t, nil
}

// applyEnvironmentDefaults resolves VULKAN_SDK/COMPILER per §6: VULKAN_SDK
// defaults the compiler path when one was not given explicitly; COMPILER
// is set for the subprocess driver's own child process environment.
func applyEnvironmentDefaults(opts *options.Options) {
	if opts.CompilerPath == "" {
		if sdk := os.Getenv("VULKAN_SDK"); sdk != "" {
			opts.CompilerPath = filepath.Join(sdk, "Bin", defaultCompilerName(opts.Platform))
		}
	}
	if !opts.UseAPI {
		os.Setenv("COMPILER", opts.CompilerPath)
	}
}

func defaultCompilerName(p options.Platform) string {
	if runtime.GOOS == "windows" {
		switch p {
		case options.SPIRV:
			return "dxc.exe"
		default:
			return "dxc.exe"
		}
	}
	return "dxc"
}

func parseFlags(argv []string) (*options.Options, error) {
	opts := options.New()
	var platform, vkLayout string
	var includeDirs, defines, relaxed, spirvExt []string

	root := &cobra.Command{
		Use:           "shadermake",
		Short:         "Builds shader permutations from a config file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(*cobra.Command, []string) error { return nil },
	}
	flags := root.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	flags.StringVar(&platform, "platform", "", "DXBC|DXIL|SPIRV")
	flags.StringVar(&opts.CompilerPath, "compiler", "", "compiler executable path")
	flags.StringVarP(&opts.OutputDir, "outputDir", "o", "", "output directory")
	flags.StringVar(&opts.BaseDir, "sourceDir", ".", "base directory for source paths")
	flags.StringVar(&opts.OutputExt, "outputExt", "", "override default output extension")
	flags.StringVarP(&opts.ShaderModel, "shaderModel", "m", "6_5", "shader model X_Y")
	flags.IntVarP(&opts.OptimizationLevel, "optimization", "O", 3, "optimization level 0-3")
	flags.StringVarP(&opts.CompilerOptions, "compilerOptions", "X", "", "additional compiler options")
	flags.StringArrayVarP(&includeDirs, "include", "I", nil, "include directory")
	flags.StringArrayVarP(&defines, "define", "D", nil, "global define NAME[=VAL]")
	flags.StringArrayVar(&relaxed, "relaxedInclude", nil, "relaxed include filename")
	flags.StringVar(&opts.VulkanVersion, "vulkanVersion", "1.3", "target Vulkan version")
	flags.StringVar(&vkLayout, "vulkanMemoryLayout", "", "dx|gl|scalar")
	flags.StringArrayVar(&spirvExt, "spirvExt", nil, "SPIR-V extension")
	flags.IntVar(&opts.RegShifts.T, "tRegShift", 0, "SPIR-V t-register shift")
	flags.IntVar(&opts.RegShifts.S, "sRegShift", 128, "SPIR-V s-register shift")
	flags.IntVar(&opts.RegShifts.B, "bRegShift", 256, "SPIR-V b-register shift")
	flags.IntVar(&opts.RegShifts.U, "uRegShift", 384, "SPIR-V u-register shift")
	flags.BoolVar(&opts.NoRegShifts, "noRegShifts", false, "disable register shift arguments")
	flags.BoolVarP(&opts.Force, "force", "f", false, "force rebuild of every permutation")
	flags.BoolVar(&opts.Serial, "serial", false, "run the worker pool with one thread")
	flags.BoolVar(&opts.Flatten, "flatten", false, "flatten output paths to basename")
	flags.BoolVar(&opts.Binary, "binary", false, "emit per-permutation binaries")
	flags.BoolVar(&opts.Header, "header", false, "emit per-permutation text headers")
	flags.BoolVar(&opts.BinaryBlob, "binaryBlob", false, "emit binary blobs")
	flags.BoolVar(&opts.HeaderBlob, "headerBlob", false, "emit text header blobs")
	flags.BoolVar(&opts.ContinueOnError, "continue", false, "continue past recoverable failures")
	flags.BoolVar(&opts.WarningsAreErrors, "WX", false, "treat warnings as errors")
	flags.BoolVar(&opts.AllResourcesBound, "allResourcesBound", false, "assume all resources bound")
	flags.BoolVar(&opts.PDB, "pdb", false, "emit PDB side-files")
	flags.BoolVar(&opts.EmbedPDB, "embedPdb", false, "embed PDB data in the binary")
	flags.BoolVar(&opts.StripReflection, "stripReflection", false, "strip reflection data")
	flags.BoolVar(&opts.MatrixRowMajor, "matrixRowMajor", false, "use row-major matrices")
	flags.BoolVar(&opts.HLSL2021, "hlsl2021", false, "target HLSL 2021")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&opts.UseAPI, "useAPI", false, "use the in-process compiler API")
	flags.BoolVar(&opts.Slang, "slang", false, "use the Slang compiler")
	flags.BoolVar(&opts.SlangHLSL, "slangHlsl", false, "Slang HLSL compatibility mode")
	flags.BoolVar(&opts.IgnoreConfigDir, "ignoreConfigDir", false, "resolve config-relative paths against cwd")
	flags.BoolVar(&opts.Colorize, "colorize", false, "colorize console output")
	flags.IntVar(&opts.RetryCount, "retryCount", 10, "transient-failure retry budget")

	if err := flags.Parse(argv); err != nil {
		return nil, builderrors.Wrap(builderrors.Configuration, "", 0, err, "parsing flags")
	}

	opts.Platform = options.Platform(strings.ToUpper(platform))
	switch opts.Platform {
	case options.DXBC:
		opts.Compiler = options.FXC
	case options.DXIL:
		opts.Compiler = options.DXC
	case options.SPIRV:
		opts.Compiler = options.DXC
	}
	if opts.Slang {
		opts.Compiler = options.Slang
	}
	opts.VulkanLayout = options.VulkanMemoryLayout(vkLayout)
	opts.IncludeDirs = includeDirs
	opts.Defines = defines
	opts.SpirvExtensions = appendDefaultSpirvExtensions(spirvExt)
	opts.RelaxedIncludes = toSet(relaxed)

	if opts.ConfigPath == "" {
		return nil, builderrors.New(builderrors.Configuration, "", 0, "-c <config> is required")
	}
	return opts, nil
}

func appendDefaultSpirvExtensions(explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	return []string{"SPV_EXT_descriptor_indexing", "KHR"}
}

func toSet(items []string) map[string]bool {
	m := map[string]bool{}
	for _, i := range items {
		m[i] = true
	}
	return m
}
