package config

import (
	"strconv"

	"github.com/evangelionxyz/ShaderMake/builderrors"
	"github.com/evangelionxyz/ShaderMake/options"
)

// InheritOptimizationLevel is the sentinel meaning "no per-line -O override
// was given; use the global default."
const InheritOptimizationLevel = -1

// ConfigLine is one parsed, post-expansion shader declaration.
type ConfigLine struct {
	Source            string
	Profile           string
	Entry             string
	Defines           []string
	OutputDir         string
	OutputSuffix      string
	ShaderModel       string
	OptimizationLevel int
}

var validProfiles = map[string]bool{
	"vs": true, "ps": true, "cs": true, "gs": true,
	"hs": true, "ds": true, "lib": true, "ms": true, "as": true,
}

// ParseLine interprets the argv tokens of one expanded config line.
func ParseLine(configPath string, no int, tokens []string, opts *options.Options) (*ConfigLine, error) {
	if len(tokens) == 0 {
		return nil, builderrors.New(builderrors.Parse, configPath, no, "empty config line")
	}
	cl := &ConfigLine{
		Source:            tokens[0],
		Entry:             "main",
		ShaderModel:       opts.ShaderModel,
		OptimizationLevel: InheritOptimizationLevel,
	}

	args := tokens[1:]
	for i := 0; i < len(args); i++ {
		tok := args[i]
		need := func() (string, error) {
			i++
			if i >= len(args) {
				return "", builderrors.New(builderrors.Parse, configPath, no, "%s requires an argument", tok)
			}
			return args[i], nil
		}
		switch tok {
		case "-T":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.Profile = v
		case "-E":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.Entry = v
		case "-D":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.Defines = append(cl.Defines, v)
		case "-o":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.OutputDir = v
		case "-O":
			v, err := need()
			if err != nil {
				return nil, err
			}
			lvl, err := strconv.Atoi(v)
			if err != nil {
				return nil, builderrors.Wrap(builderrors.Parse, configPath, no, err, "invalid -O level")
			}
			cl.OptimizationLevel = lvl
		case "-s":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.OutputSuffix = v
		case "-m":
			v, err := need()
			if err != nil {
				return nil, err
			}
			cl.ShaderModel = v
		default:
			return nil, builderrors.New(builderrors.Parse, configPath, no, "unrecognised token %q", tok)
		}
	}

	if cl.Profile == "" {
		return nil, builderrors.New(builderrors.Parse, configPath, no, "-T profile is required")
	}
	if !validProfiles[cl.Profile] {
		return nil, builderrors.New(builderrors.Parse, configPath, no, "unknown profile %q", cl.Profile)
	}
	return cl, nil
}
