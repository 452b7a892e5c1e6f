// Package config handles project discovery and configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/pipegen/internal/pipeline"
)

const (
	// FileName is the optional configuration file at the project root.
	FileName = "pipegen.yml"

	// EnvFile holds environment defaults for the CLI.
	EnvFile = ".env"

	// marker identifies the project root.
	marker = "ci/pipelines"

	defaultFeatureOutput = "ci/pipelines/{{ .Branch }}/pipeline.yml"
	defaultReleaseOutput = "ci/pipelines/release/ert-{{ .ProductVersion }}.yml"
)

// Config holds the pipegen project configuration.
type Config struct {
	// Root is the project root directory (contains ci/pipelines/).
	Root string `yaml:"-"`

	// Targets overrides the release suite pipelines.
	Targets *pipeline.Targets `yaml:"targets,omitempty"`

	Templates Templates `yaml:"templates"`
	Output    Output    `yaml:"output"`
}

// Templates overrides template locations relative to the root.
type Templates struct {
	Feature        string `yaml:"feature"`
	FeatureUpgrade string `yaml:"feature_upgrade"`
	ReleaseDir     string `yaml:"release_dir"`
	Metadata       string `yaml:"metadata"`
}

// Output holds output path patterns. Patterns are text/template strings
// with sprig functions; feature patterns see .Branch, release patterns
// see .ProductVersion.
type Output struct {
	Feature string `yaml:"feature"`
	Release string `yaml:"release"`
}

// pathData is the data passed to output patterns.
type pathData struct {
	Branch         string
	ProductVersion string
}

// FindRoot searches upward from the current directory to find the project root.
// The project root is identified by the presence of a ci/pipelines/ directory.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return FindRootFrom(dir)
}

// FindRootFrom searches upward from dir.
func FindRootFrom(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, filepath.FromSlash(marker))
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found (no %s/ directory)", marker)
}

// Load finds the project root and returns its Config.
func Load() (*Config, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadFrom(root)
}

// LoadFrom reads the configuration of the project rooted at root.
// A missing pipegen.yml yields the defaults.
func LoadFrom(root string) (*Config, error) {
	cfg := &Config{Root: root}

	data, err := os.ReadFile(filepath.Join(root, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", FileName, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", FileName, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := pipeline.DefaultLayout()
	if c.Templates.Feature == "" {
		c.Templates.Feature = def.FeatureTemplate
	}
	if c.Templates.FeatureUpgrade == "" {
		c.Templates.FeatureUpgrade = def.FeatureUpgradeTemplate
	}
	if c.Templates.ReleaseDir == "" {
		c.Templates.ReleaseDir = def.ReleaseTemplateDir
	}
	if c.Templates.Metadata == "" {
		c.Templates.Metadata = def.MetadataFile
	}
	if c.Output.Feature == "" {
		c.Output.Feature = defaultFeatureOutput
	}
	if c.Output.Release == "" {
		c.Output.Release = defaultReleaseOutput
	}
}

func (c *Config) validate() error {
	if c.Targets != nil {
		if len(c.Targets.Clean)+len(c.Targets.Upgrade) == 0 {
			return errors.New("targets: no pipelines listed")
		}
		if err := pipeline.Validate(*c.Targets); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
	}
	for name, pattern := range map[string]string{"output.feature": c.Output.Feature, "output.release": c.Output.Release} {
		if _, err := parsePattern(name, pattern); err != nil {
			return err
		}
	}
	return nil
}

// SuiteTargets returns the configured targets or the defaults.
func (c *Config) SuiteTargets() pipeline.Targets {
	if c.Targets != nil {
		return *c.Targets
	}
	return pipeline.DefaultTargets()
}

// Layout returns the pipeline layout described by the configuration.
func (c *Config) Layout() pipeline.Layout {
	return pipeline.Layout{
		FeatureTemplate:        c.Templates.Feature,
		FeatureUpgradeTemplate: c.Templates.FeatureUpgrade,
		ReleaseTemplateDir:     c.Templates.ReleaseDir,
		MetadataFile:           c.Templates.Metadata,
		FeatureOutput: func(branch string) (string, error) {
			return renderPath("output.feature", c.Output.Feature, pathData{Branch: branch})
		},
		ReleaseOutput: func(productVersion string) (string, error) {
			return renderPath("output.release", c.Output.Release, pathData{ProductVersion: productVersion})
		},
	}
}

// LoadEnv loads root/.env into the process environment without overriding
// variables already set. A missing file is not an error.
func LoadEnv(root string) error {
	err := godotenv.Load(filepath.Join(root, EnvFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}
	return nil
}

func parsePattern(name, pattern string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("parse %s pattern: %w", name, err)
	}
	return tmpl, nil
}

// renderPath expands an output pattern into a clean, root-relative path.
func renderPath(name, pattern string, data pathData) (string, error) {
	tmpl, err := parsePattern(name, pattern)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s pattern: %w", name, err)
	}

	out := path.Clean(strings.TrimSpace(buf.String()))
	if out == "." || path.IsAbs(out) || out == ".." || strings.HasPrefix(out, "../") {
		return "", fmt.Errorf("%s pattern produced invalid path %q", name, out)
	}
	return out, nil
}
