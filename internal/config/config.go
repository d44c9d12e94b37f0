// Package config loads the editorschema tool configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-editorschema/pkg/document"
)

// EnvPrefix marks environment variables that override file settings.
// EDITORSCHEMA_SERVER_ADDR maps to server.addr.
const EnvPrefix = "EDITORSCHEMA_"

// Config is the resolved configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Loader LoaderConfig `mapstructure:"loader" yaml:"loader"`
	Pages  PagesConfig  `mapstructure:"pages" yaml:"pages"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LoaderConfig struct {
	AllowHTTP bool          `mapstructure:"allow_http" yaml:"allow_http"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxBytes  int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
}

type PagesConfig struct {
	// Dir holds extra layout files merged over the built-in layouts.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Loader: LoaderConfig{
			Timeout:  10 * time.Second,
			MaxBytes: document.DefaultMaxBytes,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (optional) and applies overrides from environ, which uses
// the os.Environ format.
func Load(path string, environ []string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var values map[string]any
		if err := yaml.Unmarshal(raw, &values); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := apply(&cfg, values, true); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if overrides := envOverrides(environ); len(overrides) > 0 {
		if err := apply(&cfg, overrides, false); err != nil {
			return Config{}, fmt.Errorf("config: environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server and loader cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("config: server.max_body_bytes must be positive")
	}
	if c.Loader.MaxBytes < 0 {
		return errors.New("config: loader.max_bytes must not be negative")
	}
	return nil
}

// LoaderOptions converts the loader section into document loader options.
func (c Config) LoaderOptions() []document.LoaderOption {
	options := []document.LoaderOption{document.WithMaxBytes(c.Loader.MaxBytes)}
	if c.Loader.AllowHTTP {
		options = append(options, document.WithHTTPFallback(c.Loader.Timeout))
	}
	return options
}

// apply decodes values over cfg. Strict mode rejects keys that match no field;
// environment overrides are not strict since unrelated EDITORSCHEMA_*
// variables may be set.
func apply(cfg *Config, values map[string]any, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			durationFromNumber,
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// durationFromNumber treats bare integers as seconds.
func durationFromNumber(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

func envOverrides(environ []string) map[string]any {
	out := map[string]any{}
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		section, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
		if !ok || section == "" || field == "" {
			continue
		}
		nested, _ := out[section].(map[string]any)
		if nested == nil {
			nested = map[string]any{}
			out[section] = nested
		}
		nested[field] = value
	}
	return out
}
