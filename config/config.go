// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDBSource = "BINOTREE_DB_SOURCE"
	EnvAddress  = "BINOTREE_ADDRESS"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Lattice LatticeConfig `yaml:"lattice"`
	MC      MCConfig      `yaml:"mc"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	Source string `yaml:"source"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type LatticeConfig struct {
	// Scale is the number of periods per year used to periodize
	// annualised inputs.
	Scale int `yaml:"scale"`
	// MaxPeriods bounds lattices requested over the API.
	MaxPeriods int `yaml:"max_periods"`
}

type MCConfig struct {
	Samples int    `yaml:"samples"`
	Seed    uint64 `yaml:"seed"`
}

func Default() Config {
	return Config{
		Server:  ServerConfig{Address: ":8080"},
		DB:      DBConfig{Driver: "postgres"},
		Log:     LogConfig{Level: "info"},
		Lattice: LatticeConfig{Scale: 252, MaxPeriods: 1000},
		MC:      MCConfig{Samples: 10000, Seed: 1},
	}
}

// Load reads path on top of the defaults, expanding environment variables
// in the file. An empty path yields the defaults. Environment overrides
// are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}
	if v := os.Getenv(EnvDBSource); v != "" {
		cfg.DB.Source = v
	}
	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Server.Address = v
	}
	return cfg, cfg.Validate()
}

// LoadEnvFile exports the variables of a dotenv file that are not already
// set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Lattice.Scale <= 0:
		return fmt.Errorf("%w: lattice.scale must be positive", ErrInvalidConfig)
	case c.Lattice.MaxPeriods <= 0:
		return fmt.Errorf("%w: lattice.max_periods must be positive", ErrInvalidConfig)
	case c.MC.Samples < 2:
		return fmt.Errorf("%w: mc.samples must be at least 2", ErrInvalidConfig)
	}
	return nil
}
