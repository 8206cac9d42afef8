package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "libcat", "config.yml")
}

// Load reads the config from path (or $LIBCAT_CONFIG, or DefaultPath) and the
// LIBCAT_* environment. A .env file in the working directory is applied first.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	def := Default()
	v.SetDefault("catalog.path", def.Catalog.Path)
	v.SetDefault("catalog.driver", def.Catalog.Driver)
	v.SetDefault("auth.max_attempts", def.Auth.MaxAttempts)
	v.SetDefault("auth.admins", adminDefaults(def.Auth.Admins))
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix("LIBCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("LIBCAT_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Catalog.Path = ExpandHome(cfg.Catalog.Path)
	return &cfg, nil
}

func adminDefaults(admins []AdminConfig) []map[string]any {
	out := make([]map[string]any, len(admins))
	for i, a := range admins {
		out[i] = map[string]any{"name": a.Name, "secret": a.Secret}
	}
	return out
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
