package cmd

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors ~/.quellogrc: defaults for flags the user didn't set
// explicitly on the command line. Flag values always win over the file.
type fileConfig struct {
	Catalog      string   `yaml:"catalog"`
	NoBuiltin    bool     `yaml:"no_builtin"`
	Modules      []string `yaml:"modules"`
	FilterModule []string `yaml:"filter_module"`
	FilterField  []string `yaml:"filter_field"`
	Reverse      bool     `yaml:"reverse"`
	JSON         bool     `yaml:"json"`
	Markdown     bool     `yaml:"markdown"`
}

// defaultConfigPath returns ~/.quellogrc, or "" if the home directory is
// unavailable.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quellogrc")
}

// loadFileConfig reads and parses a YAML config file. A missing file at the
// default path is not an error; a missing file at an explicitly requested
// path is.
func loadFileConfig(path string, explicit bool) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFileConfig fills in flag variables from cfg wherever the
// corresponding flag was not set explicitly on the command line.
func applyFileConfig(cfg *fileConfig, changed func(name string) bool) {
	if !changed("catalog") && cfg.Catalog != "" {
		catalogDir = cfg.Catalog
	}
	if !changed("no-builtin") && cfg.NoBuiltin {
		noBuiltin = cfg.NoBuiltin
	}
	if !changed("module") && len(cfg.Modules) > 0 {
		moduleFilter = cfg.Modules
	}
	if !changed("filter-module") && len(cfg.FilterModule) > 0 {
		filterModule = cfg.FilterModule
	}
	if !changed("filter-field") && len(cfg.FilterField) > 0 {
		filterField = cfg.FilterField
	}
	if !changed("reverse") && cfg.Reverse {
		reverseFlag = cfg.Reverse
	}
	if !changed("json") && cfg.JSON {
		jsonFlag = cfg.JSON
	}
	if !changed("md") && cfg.Markdown {
		mdFlag = cfg.Markdown
	}
}
