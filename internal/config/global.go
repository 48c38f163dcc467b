package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/zotero2papis/config.yml.
type GlobalConfig struct {
	ZoteroDir        string            `yaml:"zotero_dir,omitempty"`
	PapisDir         string            `yaml:"papis_dir,omitempty"`
	Workers          int               `yaml:"workers,omitempty"`
	TranslatedFields map[string]string `yaml:"translated_fields,omitempty"`
	TranslatedTypes  map[string]string `yaml:"translated_types,omitempty"`
	ExcludedTypes    []string          `yaml:"excluded_types,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "zotero2papis"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/zotero2papis/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file from its default location.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}
	return LoadGlobalConfigFrom(path)
}

// LoadGlobalConfigFrom loads a global configuration file from path.
func LoadGlobalConfigFrom(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.ZoteroDir = ExpandPath(cfg.ZoteroDir)
	cfg.PapisDir = ExpandPath(cfg.PapisDir)

	return &cfg, nil
}

// Tables builds the translation tables with this config's overrides applied.
func (g *GlobalConfig) Tables() Tables {
	if g == nil {
		return DefaultTables()
	}
	return NewTables(g.TranslatedFields, g.TranslatedTypes, g.ExcludedTypes)
}
