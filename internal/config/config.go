package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Storage struct {
		Path        string `koanf:"path"`
		AtomicWrite bool   `koanf:"atomicwrite"`
	} `koanf:"storage"`

	Export struct {
		Path string `koanf:"path"`
	} `koanf:"export"`

	Report struct {
		UpcomingDays      int `koanf:"upcomingdays"`
		LowStockThreshold int `koanf:"lowstockthreshold"`
	} `koanf:"report"`

	UI struct {
		Color bool `koanf:"color"`
	} `koanf:"ui"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func (c Config) String() string {
	return fmt.Sprintf("storage.path=%s, storage.atomicwrite=%t, export.path=%s, report.upcomingdays=%d, report.lowstockthreshold=%d, ui.color=%t, log.level=%s.",
		c.Storage.Path,
		c.Storage.AtomicWrite,
		c.Export.Path,
		c.Report.UpcomingDays,
		c.Report.LowStockThreshold,
		c.UI.Color,
		c.Log.Level)
}

const (
	envPrefix         = "inventory_"
	defaultEnvFile    = ".env"
	defaultConfigFile = "config.yaml"
)

var defaults = map[string]any{
	"storage.path":             "estoque.json",
	"storage.atomicwrite":      true,
	"export.path":              "estoque.csv",
	"report.upcomingdays":      30,
	"report.lowstockthreshold": 5,
	"ui.color":                 true,
	"log.level":                "warn",
}

// Load reads the configuration from defaults, a yaml file, a .env file and environment variables,
// each layer overriding the previous one.
// An empty configFile means config.yaml in the working directory, which may be absent.
func Load(configFile string) (*Config, error) {
	// Create a new Koanf instance
	var k = koanf.New(".")

	// 1. Built-in defaults, the lowest priority
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	explicit := configFile != ""
	if !explicit {
		configFile = defaultConfigFile
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading YAML config %q: %w", configFile, err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			envMap[keyTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(strings.ToUpper(envPrefix), ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading env vars: %v", err)
	}

	var cfg Config
	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks if the configuration values are valid
func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage path is not configured")
	}
	if strings.TrimSpace(c.Export.Path) == "" {
		return fmt.Errorf("export path is not configured")
	}
	if c.Report.UpcomingDays < 0 {
		return fmt.Errorf("invalid upcoming days: %d", c.Report.UpcomingDays)
	}
	if c.Report.LowStockThreshold < 0 {
		return fmt.Errorf("invalid low stock threshold: %d", c.Report.LowStockThreshold)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	return nil
}

// keyTransformer transforms environment variable keys to match the expected format
func keyTransformer(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(key, "_", ".")
}
