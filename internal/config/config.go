package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// AllPools selects every pool zpool knows about.
const AllPools = "ALL"

// ErrInvalid marks configuration errors detected before any pool is queried.
var ErrInvalid = errors.New("invalid configuration")

// CheckConfig holds configuration for one check run.
type CheckConfig struct {
	Pool      string `yaml:"pool"`      // pool name or ALL
	Warning   *int   `yaml:"warning"`   // warning capacity percent
	Critical  *int   `yaml:"critical"`  // critical capacity percent
	SoftFail  bool   `yaml:"soft_fail"` // exit CRITICAL with the WARNING code
	ZpoolPath string `yaml:"zpool"`     // zpool binary name or path
	LogLevel  string `yaml:"log_level"`
}

// Thresholds are capacity percentages at which a pool turns WARNING or CRITICAL.
type Thresholds struct {
	Warning  int
	Critical int
}

// Default returns the configuration used when no file is given.
func Default() *CheckConfig {
	return &CheckConfig{
		ZpoolPath: "zpool",
		LogLevel:  "warn",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*CheckConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read config"), ErrInvalid)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse config %s", path), ErrInvalid)
	}
	return cfg, nil
}

// SelectsAll reports whether the selector names every pool.
func (c *CheckConfig) SelectsAll() bool {
	return c.Pool == AllPools
}

// Thresholds returns the capacity thresholds, or nil when none are configured.
// Call Validate first.
func (c *CheckConfig) Thresholds() *Thresholds {
	if c.Warning == nil || c.Critical == nil {
		return nil
	}
	return &Thresholds{Warning: *c.Warning, Critical: *c.Critical}
}

// Validate checks the pool selector and thresholds.
func (c *CheckConfig) Validate() error {
	if c.Pool == "" {
		return errors.Mark(errors.New("pool name or ALL is required"), ErrInvalid)
	}
	if (c.Warning == nil) != (c.Critical == nil) {
		return errors.Mark(errors.New("both warning and critical thresholds must be set"), ErrInvalid)
	}
	if c.Warning == nil {
		return nil
	}
	if *c.Warning < 0 || *c.Critical < 0 {
		return errors.Mark(errors.New("thresholds must not be negative"), ErrInvalid)
	}
	if *c.Warning > *c.Critical {
		return errors.Mark(errors.Newf("warning threshold (%d) must not be higher than critical threshold (%d)", *c.Warning, *c.Critical), ErrInvalid)
	}
	return nil
}
