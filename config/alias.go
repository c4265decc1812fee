package config

import "path/filepath"

const defaultAliasFileName = "alias.yml"

// AliasConfig locates the address book that maps names to base58 keys.
// Command line arguments naming a pack set, wallet or mint are looked up in
// it before being parsed as base58.
type AliasConfig struct {
	AliasFile *AliasFileConfig `yaml:"aliasFile"`
}

type AliasFileConfig struct {
	Path string `yaml:"path"`
	// CreateIfMissing writes an empty address book on first use. When unset a
	// missing file resolves nothing and nothing is written.
	CreateIfMissing bool `yaml:"createIfMissing"`
}

// WithDefaults returns a copy with the address book placed next to
// config.yml.
func (c AliasConfig) WithDefaults(configPath string) AliasConfig {
	cpy := c
	file := AliasFileConfig{}
	if cpy.AliasFile != nil {
		file = *cpy.AliasFile
	}
	if file.Path == "" {
		file.Path = filepath.Join(configPath, defaultAliasFileName)
		file.CreateIfMissing = true
	}
	cpy.AliasFile = &file

	return cpy
}
