// Package config loads command line settings from defaults, a YAML file,
// a .env file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract"
	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/tools"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PBIEXTRACT_"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "pbiextract.yaml"

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "Power BI Extraction"

// Config holds the resolved settings of a run.
type Config struct {
	OutputDir     string      `koanf:"output_dir"`
	SearchDirs    []string    `koanf:"search_dirs"`
	Tools         ToolsConfig `koanf:"tools"`
	Catalog       string      `koanf:"catalog"`
	IncludeHidden bool        `koanf:"include_hidden"`
	Verbose       bool        `koanf:"verbose"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// ToolsConfig names the conversion executables.
type ToolsConfig struct {
	Extract string `koanf:"extract"`
	Compile string `koanf:"compile"`
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"search-dir":   "search_dirs",
	"extract-tool": "tools.extract",
	"compile-tool": "tools.compile",
}

// Load resolves configuration. Precedence (highest to lowest):
// flags > environment (.env included) > config file > defaults.
// An empty cfgFile looks for DefaultFile in the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output_dir":     DefaultOutputDir,
		"tools.extract":  tools.DefaultExtractTool,
		"tools.compile":  tools.DefaultCompileTool,
		"include_hidden": false,
		"verbose":        false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	fileUsed := cfgFile
	if fileUsed == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			fileUsed = DefaultFile
		}
	}
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// PBIEXTRACT_TOOLS__EXTRACT -> tools.extract, PBIEXTRACT_OUTPUT_DIR -> output_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = fileUsed
	cfg.SearchDirs = splitDirs(cfg.SearchDirs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitDirs expands list-separated entries, as environment values arrive
// as a single string.
func splitDirs(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		for _, part := range filepath.SplitList(d) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks required settings.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.OutputDir) == "":
		return errors.New("output_dir must not be empty")
	case strings.TrimSpace(c.Tools.Extract) == "":
		return errors.New("tools.extract must not be empty")
	case strings.TrimSpace(c.Tools.Compile) == "":
		return errors.New("tools.compile must not be empty")
	}
	return nil
}

// Options converts the config into pipeline options.
func (c *Config) Options() pbiextract.Options {
	opts := pbiextract.DefaultOptions(c.OutputDir)
	opts.SearchDirs = c.SearchDirs
	opts.ExtractTool = c.Tools.Extract
	opts.CompileTool = c.Tools.Compile
	opts.CatalogPath = c.Catalog
	include := c.IncludeHidden
	opts.IncludeHidden = &include
	return opts
}
