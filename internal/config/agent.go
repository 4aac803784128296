package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvAgentAPIKey     = "COVERLINE_AGENT_API_KEY"
	EnvAgentBaseURL    = "COVERLINE_AGENT_BASE_URL"
	EnvAgentModel      = "COVERLINE_AGENT_MODEL"
	EnvAgentMaxTokens  = "COVERLINE_AGENT_MAX_TOKENS"
	EnvAgentTimeout    = "COVERLINE_AGENT_TIMEOUT"
	defaultAgentModel  = "gpt-4o"
	defaultAgentTokens = 4096
)

// AgentConfig holds model provider connection parameters for the
// underwriting capability client.
type AgentConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
	Timeout   string `toml:"timeout"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *AgentConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *AgentConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = defaultAgentModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultAgentTokens
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *AgentConfig) loadEnv() {
	if v := os.Getenv(EnvAgentAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAgentModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAgentTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *AgentConfig) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
