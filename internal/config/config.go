package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvConfigFile names an explicit config file, bypassing the search path
const EnvConfigFile = "DBGPMAP_CONFIG"

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format" yaml:"format"`
	Quiet   bool   `mapstructure:"quiet" yaml:"quiet"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`

	// Relay settings
	Listen      string    `mapstructure:"listen" yaml:"listen"`
	IDE         string    `mapstructure:"ide" yaml:"ide"`
	DialTimeout string    `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	MapFile     string    `mapstructure:"map_file" yaml:"map_file"`
	Watch       bool      `mapstructure:"watch" yaml:"watch"`
	Contexts    []string  `mapstructure:"contexts" yaml:"contexts"`
	Mappings    []Mapping `mapstructure:"mappings" yaml:"mappings"`
}

// Mapping is one inline logical => physical pair
type Mapping struct {
	Logical  string `mapstructure:"logical" yaml:"logical"`
	Physical string `mapstructure:"physical" yaml:"physical"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:      "text",
		Quiet:       false,
		Verbose:     false,
		Listen:      "0.0.0.0:9000",
		IDE:         "127.0.0.1:9001",
		DialTimeout: "5s",
	}
}

// DialTimeoutDuration parses DialTimeout, falling back to the default
func (c *Config) DialTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.DialTimeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Second
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := newViper()

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return unmarshal(v)
	}

	if path := ConfigFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	// Config file not found; defaults and environment only
	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// ConfigFile returns the path of the config file Load would read, or ""
func ConfigFile() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	for _, c := range searchPaths() {
		v := viper.New()
		v.SetConfigName(c.name)
		v.AddConfigPath(c.dir)
		if err := v.ReadInConfig(); err == nil {
			return v.ConfigFileUsed()
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Present but unreadable: let Load report it
			return v.ConfigFileUsed()
		}
	}
	return ""
}

type searchPath struct {
	dir  string
	name string
}

// searchPaths lists config locations, highest precedence first
func searchPaths() []searchPath {
	paths := []searchPath{{dir: ".", name: "dbgpmap"}}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, searchPath{dir: home, name: ".dbgpmap"})
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, searchPath{dir: filepath.Join(configDir, "dbgpmap"), name: "dbgpmap"})
	}
	return append(paths, searchPath{dir: "/etc/dbgpmap/", name: "dbgpmap"})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variables
	v.SetEnvPrefix("DBGPMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("listen", cfg.Listen)
	v.SetDefault("ide", cfg.IDE)
	v.SetDefault("dial_timeout", cfg.DialTimeout)
	v.SetDefault("map_file", cfg.MapFile)
	v.SetDefault("watch", cfg.Watch)
	v.SetDefault("contexts", []string{})
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
