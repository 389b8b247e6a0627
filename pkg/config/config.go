// Package config holds the settings selecting which phases a run executes
// and where they read and write.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

const (
	DefaultDatasetID    = "nvidia/Nemotron-CC-Math-v1"
	DefaultRepoType     = "dataset"
	DefaultRevision     = "main"
	DefaultInputSubdir  = "data"
	DefaultOutputSubdir = "jsonl_output"
	DefaultAllowPattern = "{subset}/part_000000.parquet"
)

// Config selects the phases of a run. Phases execute in the order
// download, inspect, convert, augment.
type Config struct {
	Download bool `json:"download" yaml:"download" toml:"download"`
	Inspect  bool `json:"inspect" yaml:"inspect" toml:"inspect"`
	Convert  bool `json:"convert" yaml:"convert" toml:"convert"`
	Augment  bool `json:"augment" yaml:"augment" toml:"augment"`

	DatasetID    string   `json:"dataset_id" yaml:"dataset_id" toml:"dataset_id" validate:"required_if=Download true"`
	RepoType     string   `json:"repo_type" yaml:"repo_type" toml:"repo_type" validate:"omitempty,oneof=dataset model space"`
	Revision     string   `json:"revision" yaml:"revision" toml:"revision"`
	Subsets      []string `json:"subsets" yaml:"subsets" toml:"subsets"`
	AllowPattern string   `json:"allow_pattern" yaml:"allow_pattern" toml:"allow_pattern"`

	DownloadRoot string `json:"download_root" yaml:"download_root" toml:"download_root" validate:"required_if=Download true,required_if=Convert true"`
	InputSubdir  string `json:"input_subdir" yaml:"input_subdir" toml:"input_subdir"`
	OutputRoot   string `json:"output_root" yaml:"output_root" toml:"output_root"`

	InspectFile  string `json:"inspect_file" yaml:"inspect_file" toml:"inspect_file" validate:"required_if=Inspect true"`
	InspectIndex *int64 `json:"inspect_index" yaml:"inspect_index" toml:"inspect_index"`

	AugmentInput  string `json:"augment_input" yaml:"augment_input" toml:"augment_input" validate:"required_if=Augment true"`
	AugmentOutput string `json:"augment_output" yaml:"augment_output" toml:"augment_output" validate:"required_if=Augment true"`
}

// Load reads a JSON, YAML or TOML file (chosen by extension), fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.DatasetID == "" {
		c.DatasetID = DefaultDatasetID
	}
	if c.RepoType == "" {
		c.RepoType = DefaultRepoType
	}
	if c.Revision == "" {
		c.Revision = DefaultRevision
	}
	if c.AllowPattern == "" {
		c.AllowPattern = DefaultAllowPattern
	}
	if c.InputSubdir == "" {
		c.InputSubdir = DefaultInputSubdir
	}
	if c.OutputRoot == "" && c.DownloadRoot != "" {
		c.OutputRoot = filepath.Join(c.DownloadRoot, DefaultOutputSubdir)
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConvertInput is the directory the tree converter reads.
func (c *Config) ConvertInput() string {
	return filepath.Join(c.DownloadRoot, c.InputSubdir)
}
