package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineWorkspace     = "COVERLINE_PIPELINE_WORKSPACE"
	EnvPipelineMaxAttempts   = "COVERLINE_PIPELINE_MAX_ATTEMPTS"
	EnvPipelineCleanupMaxAge = "COVERLINE_PIPELINE_CLEANUP_MAX_AGE"
	EnvPipelineCleanupEvery  = "COVERLINE_PIPELINE_CLEANUP_INTERVAL"
)

// PipelineConfig holds stage execution, retry, and session cleanup parameters.
type PipelineConfig struct {
	// Workspace is the root directory for per-session document extraction.
	Workspace string `toml:"workspace"`
	// MaxAttempts bounds capability calls per stage.
	MaxAttempts int `toml:"max_attempts"`
	// TransientDelay is slept between attempts after an unclassified failure.
	TransientDelay string `toml:"transient_delay"`
	// ThrottleDelay is the base delay for rate-limited attempts; it scales
	// linearly with the attempt number.
	ThrottleDelay string `toml:"throttle_delay"`
	// SoftDelay is slept before retrying a degenerate (too short) analysis.
	SoftDelay string `toml:"soft_delay"`
	// ExtractConcurrency bounds parallel document text extraction.
	ExtractConcurrency int `toml:"extract_concurrency"`
	// CleanupMaxAge is the session age beyond which the sweep removes state.
	CleanupMaxAge string `toml:"cleanup_max_age"`
	// CleanupInterval is the period between sweep runs. Zero disables the sweep.
	CleanupInterval string `toml:"cleanup_interval"`
}

func (c *PipelineConfig) TransientDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.TransientDelay)
	return d
}

func (c *PipelineConfig) ThrottleDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.ThrottleDelay)
	return d
}

func (c *PipelineConfig) SoftDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SoftDelay)
	return d
}

func (c *PipelineConfig) CleanupMaxAgeDuration() time.Duration {
	d, _ := time.ParseDuration(c.CleanupMaxAge)
	return d
}

func (c *PipelineConfig) CleanupIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.CleanupInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Workspace != "" {
		c.Workspace = overlay.Workspace
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.TransientDelay != "" {
		c.TransientDelay = overlay.TransientDelay
	}
	if overlay.ThrottleDelay != "" {
		c.ThrottleDelay = overlay.ThrottleDelay
	}
	if overlay.SoftDelay != "" {
		c.SoftDelay = overlay.SoftDelay
	}
	if overlay.ExtractConcurrency != 0 {
		c.ExtractConcurrency = overlay.ExtractConcurrency
	}
	if overlay.CleanupMaxAge != "" {
		c.CleanupMaxAge = overlay.CleanupMaxAge
	}
	if overlay.CleanupInterval != "" {
		c.CleanupInterval = overlay.CleanupInterval
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Workspace == "" {
		c.Workspace = "sessions"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.TransientDelay == "" {
		c.TransientDelay = "2s"
	}
	if c.ThrottleDelay == "" {
		c.ThrottleDelay = "5s"
	}
	if c.SoftDelay == "" {
		c.SoftDelay = "1s"
	}
	if c.ExtractConcurrency == 0 {
		c.ExtractConcurrency = 4
	}
	if c.CleanupMaxAge == "" {
		c.CleanupMaxAge = "24h"
	}
	if c.CleanupInterval == "" {
		c.CleanupInterval = "1h"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineWorkspace); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv(EnvPipelineMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPipelineCleanupMaxAge); v != "" {
		c.CleanupMaxAge = v
	}
	if v := os.Getenv(EnvPipelineCleanupEvery); v != "" {
		c.CleanupInterval = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if c.ExtractConcurrency < 1 {
		return fmt.Errorf("extract_concurrency must be positive")
	}
	for name, value := range map[string]string{
		"transient_delay":  c.TransientDelay,
		"throttle_delay":   c.ThrottleDelay,
		"soft_delay":       c.SoftDelay,
		"cleanup_max_age":  c.CleanupMaxAge,
		"cleanup_interval": c.CleanupInterval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
