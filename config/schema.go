package config

// Config is the top-level libcat configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// CatalogConfig says where the snapshot lives and which backend writes it.
type CatalogConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Driver string `mapstructure:"driver" yaml:"driver"` // "json" or "sqlite"
}

// AuthConfig holds the administrator credential table.
type AuthConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Admins      []AdminConfig `mapstructure:"admins" yaml:"admins"`
}

// AdminConfig is one administrator. Secret may be a bcrypt hash.
type AdminConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{Path: "library.json", Driver: "json"},
		Auth: AuthConfig{
			MaxAttempts: 3,
			Admins: []AdminConfig{
				{Name: "Ahmad", Secret: "123"},
				{Name: "Ruden", Secret: "456"},
				{Name: "Zaidan", Secret: "789"},
			},
		},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// AdminByName returns the admin entry with the given name, or nil.
func (a *AuthConfig) AdminByName(name string) *AdminConfig {
	for i := range a.Admins {
		if a.Admins[i].Name == name {
			return &a.Admins[i]
		}
	}
	return nil
}
