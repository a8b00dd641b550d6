// Package config loads CLI settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/internal/logging"
	"github.com/reoring/parseas/load"
)

// Config is the CLI configuration.
type Config struct {
	CacheSize int            `mapstructure:"cache_size"`
	FailFast  bool           `mapstructure:"fail_fast"`
	Jobs      int            `mapstructure:"jobs"`
	TypeName  string         `mapstructure:"type_name"`
	Log       logging.Config `mapstructure:"log"`
	Load      Load           `mapstructure:"load"`
}

// Load holds the decoding settings.
type Load struct {
	Protocol    string `mapstructure:"protocol"`
	ContentType string `mapstructure:"content_type"`
	Encoding    string `mapstructure:"encoding"`
	AllowUnsafe bool   `mapstructure:"allow_unsafe"`
	JSONDecoder string `mapstructure:"json_decoder"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CacheSize: parseas.DefaultCacheSize,
		Jobs:      4,
		Log:       logging.DefaultConfig(),
		Load:      Load{JSONDecoder: "go-json"},
	}
}

// File reads path on top of Default. An empty path returns Default.
func File(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of Default. Unknown keys are errors; scalar
// values are converted weakly ("10" for an int is fine).
func Parse(b []byte) (Config, error) {
	cfg := Default()
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	var errs []error
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("cache_size must be positive, got %d", c.CacheSize))
	}
	if c.Jobs <= 0 {
		errs = append(errs, fmt.Errorf("jobs must be positive, got %d", c.Jobs))
	}
	if c.Load.Protocol != "" {
		if _, err := load.ParseProtocol(c.Load.Protocol); err != nil {
			errs = append(errs, err)
		}
	}
	if _, ok := load.JSONDecoderByName(c.Load.JSONDecoder); !ok {
		errs = append(errs, fmt.Errorf("unknown json_decoder %q", c.Load.JSONDecoder))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options maps the settings onto parseas options. Validate must pass first.
func (c Config) Options() []parseas.Option {
	var opts []parseas.Option
	if c.TypeName != "" {
		opts = append(opts, parseas.WithTypeName(c.TypeName))
	}
	if c.FailFast {
		opts = append(opts, parseas.WithFailFast())
	}
	if c.Load.Protocol != "" {
		p, _ := load.ParseProtocol(c.Load.Protocol)
		opts = append(opts, parseas.WithProtocol(p))
	}
	if c.Load.ContentType != "" {
		opts = append(opts, parseas.WithContentType(c.Load.ContentType))
	}
	if c.Load.Encoding != "" {
		opts = append(opts, parseas.WithEncoding(c.Load.Encoding))
	}
	if c.Load.AllowUnsafe {
		opts = append(opts, parseas.WithAllowUnsafe())
	}
	if d, ok := load.JSONDecoderByName(c.Load.JSONDecoder); ok {
		opts = append(opts, parseas.WithJSONDecoder(d))
	}
	return opts
}
