package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/usbuild/internal/errors"
)

// Environment variable prefix for usbuild configuration.
const envPrefix = "USBUILD"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("outDir", "USBUILD_OUT_DIR")
	_ = v.BindEnv("minify", "USBUILD_MINIFY")
	_ = v.BindEnv("autoGrant", "USBUILD_AUTO_GRANT")
	_ = v.BindEnv("server.port", "USBUILD_PORT")
	_ = v.BindEnv("server.open", "USBUILD_OPEN")

	v.SetDefault("outDir", DefaultOutDir)

	return &Loader{v: v}
}

// Load loads configuration from configFile. A .env file next to the config
// file is loaded into the environment first; environment variables take
// precedence over file values. Files ending in .hcl are decoded as HCL,
// everything else is handed to viper.
func (l *Loader) Load(configFile string) (*Config, error) {
	expanded, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	if _, err := os.Stat(expanded); err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("config file does not exist", expanded,
				"Run 'usbuild config init' to create one")
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Missing .env is fine.
	_ = godotenv.Load(filepath.Join(filepath.Dir(expanded), ".env"))

	if strings.EqualFold(filepath.Ext(expanded), ".hcl") {
		raw, err := decodeHCL(expanded)
		if err != nil {
			return nil, err
		}
		l.v.SetConfigType("yaml")
		if err := l.v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		l.v.SetConfigFile(expanded)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Root == "" {
		cfg.Root = filepath.Dir(expanded)
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(expanded), cfg.Root)
	}

	return &cfg, nil
}

// WriteDefault writes a starter YAML config file to path.
func WriteDefault(path string, cfg *Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
