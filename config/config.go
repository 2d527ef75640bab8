// Package config loads the handful of knobs a synctree host process
// needs, adapted from the teacher's viper-backed am package: a Config
// struct unmarshaled by viper, environment overrides under a
// SYNCTREE_ prefix, and a project/home/system file search order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// SyncConfig holds the sync-core host knobs. Field names mirror the
// dotted viper keys via mapstructure tags.
type SyncConfig struct {
	NextQueryTagStart uint64 `mapstructure:"next_query_tag_start"`
	ListenTimeoutSecs int    `mapstructure:"listen_timeout_seconds"`
	HashCheckEnabled  bool   `mapstructure:"hash_check_enabled"`
	LogTheme          string `mapstructure:"log_theme"`
}

// Config is the top-level configuration document.
type Config struct {
	Sync SyncConfig `mapstructure:"sync"`
}

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// SetDefaults installs every knob's default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sync.next_query_tag_start", 1)
	v.SetDefault("sync.listen_timeout_seconds", 30)
	v.SetDefault("sync.hash_check_enabled", true)
	v.SetDefault("sync.log_theme", "everforest")
}

// Load returns the process-wide configuration, reading it from
// environment and config files on first call and caching it after.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadFromFile reads configuration from exactly one TOML file,
// ignoring environment variables and the search path Load uses. It
// does not populate the process-wide cache.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Reset clears the cached configuration and viper instance. Tests use
// this to get a clean slate between cases that set environment
// variables or work in different directories.
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("SYNCTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// mergeConfigFiles applies system, user, and project config files in
// ascending precedence, below environment variables.
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	paths := []string{"/etc/synctree/config.toml"}
	if homeDir != "" {
		paths = append(paths, filepath.Join(homeDir, ".synctree", "config.toml"))
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		tmp := viper.New()
		tmp.SetConfigFile(p)
		tmp.SetConfigType("toml")
		if err := tmp.ReadInConfig(); err != nil {
			continue
		}
		if err := v.MergeConfigMap(tmp.AllSettings()); err != nil {
			continue
		}
	}
}

// findProjectConfig walks up from the working directory looking for
// synctree.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "synctree.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
