package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "toastpack.json"
	DeployDirEnv      = "TOASTPACK_DEPLOY_DIR"
)

type Configuration struct {
	RootDir          string               `json:"root_directory,omitempty" yaml:"root_directory,omitempty"`
	OutputDir        string               `json:"output_directory,omitempty" yaml:"output_directory,omitempty"`
	DeployDir        string               `json:"deploy_directory,omitempty" yaml:"deploy_directory,omitempty"`
	Minifier         string               `json:"minifier,omitempty" yaml:"minifier,omitempty"`
	DefaultFormatter string               `json:"default_formatter,omitempty" yaml:"default_formatter,omitempty"`
	Concurrency      int                  `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Compress         bool                 `json:"compress,omitempty" yaml:"compress,omitempty"`
	Manifest         bool                 `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Clean            CleanConfiguration   `json:"clean,omitempty" yaml:"clean,omitempty"`
	HTML             HTMLConfiguration    `json:"html,omitempty" yaml:"html,omitempty"`
	Version          VersionConfiguration `json:"version,omitempty" yaml:"version,omitempty"`
	ServeConfig      ServeConfiguration   `json:"serve_config,omitempty" yaml:"serve_config,omitempty"`
	Tasks            []Task               `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// CleanConfiguration guards the deletion of the previous output directory.
type CleanConfiguration struct {
	AllowedNames []string `json:"allowed_names,omitempty" yaml:"allowed_names,omitempty"`
	MinDepth     int      `json:"min_depth,omitempty" yaml:"min_depth,omitempty"`
}

type HTMLConfiguration struct {
	ScriptRewrites map[string]string `json:"script_rewrites,omitempty" yaml:"script_rewrites,omitempty"`
	Version        string            `json:"version,omitempty" yaml:"version,omitempty"`
}

// VersionConfiguration lists the files stamped by the prebuild step.
type VersionConfiguration struct {
	ConstantsFile string   `json:"constants_file,omitempty" yaml:"constants_file,omitempty"`
	HTMLFiles     []string `json:"html_files,omitempty" yaml:"html_files,omitempty"`
}

type ServeConfiguration struct {
	Redirect404 string `json:"redirect_404" yaml:"redirect_404"`
	Port        int    `json:"port" yaml:"port"`
}

// Default returns a fresh configuration with every default applied.
func Default() *Configuration {
	return &Configuration{
		RootDir:          ".",
		OutputDir:        "public",
		Minifier:         "tdewolff",
		DefaultFormatter: "js",
		Concurrency:      runtime.NumCPU(),
		Clean: CleanConfiguration{
			AllowedNames: []string{"public"},
			MinDepth:     5,
		},
		HTML: HTMLConfiguration{
			ScriptRewrites: map[string]string{
				"dist/main.js": "main.js",
			},
		},
		Version: VersionConfiguration{
			ConstantsFile: "src/modules/constants.ts",
			HTMLFiles:     []string{"index.html", "login.html"},
		},
		ServeConfig: ServeConfiguration{
			Port: 8100,
		},
	}
}

// Load reads configpath over the defaults. A missing file is not an error.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func Load(configpath string) (*Configuration, error) {
	cfg := Default()

	if configpath == "" {
		configpath = DefaultConfigFile
	}

	_, err := os.Stat(configpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not access configuration file %s: %v", configpath, err)
		}
		cfg.applyEnv()
		return cfg, cfg.normalize()
	}

	f, err := os.Open(configpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(configpath)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(cfg)
	default:
		err = json.NewDecoder(f).Decode(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode configuration file %s: %v", configpath, err)
	}

	cfg.applyEnv()
	return cfg, cfg.normalize()
}

func (c *Configuration) applyEnv() {
	if v := os.Getenv(DeployDirEnv); v != "" {
		c.DeployDir = v
	}
}

func (c *Configuration) normalize() error {
	if c.RootDir == "" {
		c.RootDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if strings.ContainsAny(c.OutputDir, `/\`) {
		return fmt.Errorf("output_directory must be a direct child of the root directory, got %q", c.OutputDir)
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if len(c.Tasks) == 0 {
		c.Tasks = DefaultTasks()
	}
	return nil
}
