package config

const (
	defaultAccountCacheSize = 4096
)

type DBConfig struct {
	Path string `yaml:"path"`
	// Number of decoded account records held in memory
	AccountCacheSize int `yaml:"accountCacheSize"`

	// Test-only parameters, do not enable outside of tests
	InMemoryDONOTUSE bool
}

// WithDefaults returns a copy of the DBConfig with any missing fields set to
// their default values.
func (c DBConfig) WithDefaults() DBConfig {
	cpy := c
	if cpy.AccountCacheSize == 0 {
		cpy.AccountCacheSize = defaultAccountCacheSize
	}
	return cpy
}
