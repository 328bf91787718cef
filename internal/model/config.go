package model

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config drives a certhound run: which filesystem roots and container images
// to walk, and how the tool behaves while doing it.
type Config struct {
	Version    int        `yaml:"version"` // fixed 0 for now
	Filesystem Filesystem `yaml:"filesystem"`
	Containers Containers `yaml:"containers"`
	Service    Service    `yaml:"service"`
}

// Filesystem scanning settings.
type Filesystem struct {
	Enabled bool     `yaml:"enabled"`
	Paths   []string `yaml:"paths,omitempty"` // nil/empty => use CWD
}

// Containers lists OCI image references to pull and walk.
type Containers struct {
	Enabled bool     `yaml:"enabled"`
	Images  []string `yaml:"images,omitempty"`
}

// Service holds run-wide behavior.
type Service struct {
	Verbose bool `yaml:"verbose"`
	Workers int  `yaml:"workers,omitempty"` // 0 => NumCPU
}

// DefaultConfig scans the working directory and nothing else.
func DefaultConfig() Config {
	return Config{
		Version:    0,
		Filesystem: Filesystem{Enabled: true},
		Service:    Service{Workers: runtime.NumCPU()},
	}
}

// LoadConfig decodes YAML from r and validates the result. Unknown fields
// are rejected, so typos surface instead of being silently dropped.
func LoadConfig(r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Config
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every problem at once via errors.Join.
func (c Config) Validate() error {
	var errs []error
	if c.Version != 0 {
		errs = append(errs, fmt.Errorf("config version %d is not supported, expected 0", c.Version))
	}
	if c.Service.Workers < 0 {
		errs = append(errs, errors.New("service.workers must not be negative"))
	}
	if c.Containers.Enabled && len(c.Containers.Images) == 0 {
		errs = append(errs, errors.New("containers.enabled requires at least one image"))
	}
	return errors.Join(errs...)
}

// WorkerLimit resolves the configured worker count to a usable limit.
func (c Config) WorkerLimit() int {
	if c.Service.Workers > 0 {
		return c.Service.Workers
	}
	return runtime.NumCPU()
}
