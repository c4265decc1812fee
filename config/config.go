package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const ConfigFileName = "config.yml"

type Config struct {
	DB      *DBConfig    `yaml:"db"`
	Logger  *LogConfig   `yaml:"logger"`
	LogFile string       `yaml:"logFile"`
	Packs   *PacksConfig `yaml:"packs"`
	Alias   *AliasConfig `yaml:"alias"`
}

// WithDefaults returns a copy of the Config with every section populated.
func (c Config) WithDefaults(configPath string) Config {
	cpy := c
	db := DBConfig{}
	if cpy.DB != nil {
		db = *cpy.DB
	}
	if db.Path == "" {
		db.Path = filepath.Join(configPath, "store")
	}
	db = db.WithDefaults()
	cpy.DB = &db

	packs := PacksConfig{}
	if cpy.Packs != nil {
		packs = *cpy.Packs
	}
	packs = packs.WithDefaults()
	cpy.Packs = &packs

	alias := AliasConfig{}
	if cpy.Alias != nil {
		alias = *cpy.Alias
	}
	alias = alias.WithDefaults(configPath)
	cpy.Alias = &alias

	return cpy
}

// LoadConfig reads config.yml from configPath. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(configPath, ConfigFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load config")
	}

	config := &Config{}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	}

	withDefaults := config.WithDefaults(configPath)
	if _, err := withDefaults.Packs.ProgramIDs(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	return &withDefaults, nil
}

// SaveConfig writes config to config.yml under configPath.
func SaveConfig(configPath string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "save config")
	}

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return errors.Wrap(err, "save config")
	}

	return errors.Wrap(
		os.WriteFile(filepath.Join(configPath, ConfigFileName), data, 0600),
		"save config",
	)
}
