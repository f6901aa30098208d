package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config
// is not given; its absence is not an error.
const DefaultConfigFile = "moonsmith.yaml"

// Config is the project configuration file. Every field has a flag
// counterpart; flags win when both are set.
type Config struct {
	// SchemaVersion pins the IR schema version builds must produce.
	SchemaVersion string `yaml:"schemaVersion"`

	// Toolchain is recorded verbatim in document metadata.
	Toolchain map[string]string `yaml:"toolchain"`

	// Functions carries per-function metadata overrides, keyed by
	// function name.
	Functions map[string]map[string]string `yaml:"functions"`

	// CFG attaches control-flow graphs to every lowered function.
	CFG bool `yaml:"cfg"`

	// CacheDB is the artifact cache path used by build --cache and the
	// cache subcommands.
	CacheDB string `yaml:"cacheDb"`
}

// LoadConfig reads a YAML project config. With an empty path the default
// file is tried and a missing file yields a zero config.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
