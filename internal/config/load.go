package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigRead    = zerr.New("failed to read config file")
	ErrConfigParse   = zerr.New("failed to parse config file")
	ErrConfigInvalid = zerr.New("invalid configuration")
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// Override adjusts a decoded config before validation. The CLI uses it to
// apply flags.
type Override func(*Config)

// Load reads a YAML config file on top of Default, applies overrides and
// validates the result.
func Load(path string, overrides ...Override) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", ErrConfigRead, err), "path", path)
	}

	cfg, err := Parse(data, overrides...)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes YAML config data. Unknown keys are rejected.
func Parse(data []byte, overrides ...Override) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
