package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coverline/coverline/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "coverline"
user = "coverline"
password = "coverline"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "underwriting"
connection_string = "DefaultEndpointsProtocol=http;AccountName=coverlinestore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/coverlinestore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[agent]
api_key = "test-key"
base_url = "http://localhost:11434/v1"
model = "llama3.1:8b"

[pipeline]
workspace = "sessions"
max_attempts = 5
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"
`

// minimalConfig provides the minimum fields required for validation
// to pass (db name, db user, storage connection string). Everything
// else fills in from defaults.
const minimalConfig = `
shutdown_timeout = "30s"

[server]
port = 8080

[database]
name = "coverline"
user = "coverline"

[storage]
connection_string = "conn"

[api]
base_path = "/api"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "underwriting" {
		t.Errorf("storage container: got %s, want underwriting", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_VERSION", "2.0.0")
	t.Setenv("COVERLINE_SERVER_PORT", "3000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COVERLINE_DB_NAME", "testdb")
	t.Setenv("COVERLINE_DB_USER", "testuser")
	t.Setenv("COVERLINE_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `invalid = [`)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_ENV", "production")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestPaginationDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("COVERLINE_PAGINATION_MAX_PAGE_SIZE", "200")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			got := cfg.MaxUploadSizeBytes()
			if got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxUploadSizeDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := int64(50 * 1024 * 1024)
	if got := cfg.API.MaxUploadSizeBytes(); got != want {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, want)
	}
}

func TestMaxUploadSizeEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_API_MAX_UPLOAD_SIZE", "100MB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := int64(100 * 1024 * 1024)
	if got := cfg.API.MaxUploadSizeBytes(); got != want {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, want)
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "invalid port",
			config: `
shutdown_timeout = "30s"

[server]
port = 99999

[database]
name = "coverline"
user = "coverline"

[storage]
connection_string = "conn"
`,
			wantErr: "invalid port",
		},
		{
			name: "invalid read_timeout",
			config: `
shutdown_timeout = "30s"

[server]
read_timeout = "bad"

[database]
name = "coverline"
user = "coverline"

[storage]
connection_string = "conn"
`,
			wantErr: "invalid read_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAgentConfigFromTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Agent.APIKey != "test-key" {
		t.Errorf("agent api_key: got %s, want test-key", cfg.Agent.APIKey)
	}
	if cfg.Agent.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("agent base_url: got %s, want http://localhost:11434/v1", cfg.Agent.BaseURL)
	}
	if cfg.Agent.Model != "llama3.1:8b" {
		t.Errorf("agent model: got %s, want llama3.1:8b", cfg.Agent.Model)
	}
}

func TestAgentDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Agent.Model != "gpt-4o" {
		t.Errorf("agent model: got %s, want gpt-4o", cfg.Agent.Model)
	}
	if cfg.Agent.MaxTokens != 4096 {
		t.Errorf("agent max_tokens: got %d, want 4096", cfg.Agent.MaxTokens)
	}
	if cfg.Agent.TimeoutDuration() != 2*time.Minute {
		t.Errorf("agent timeout: got %v, want 2m", cfg.Agent.TimeoutDuration())
	}
}

func TestAgentEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_AGENT_API_KEY", "env-key")
	t.Setenv("COVERLINE_AGENT_BASE_URL", "https://api.openai.com/v1")
	t.Setenv("COVERLINE_AGENT_MODEL", "gpt-4o-mini")
	t.Setenv("COVERLINE_AGENT_TIMEOUT", "90s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Agent.APIKey != "env-key" {
		t.Errorf("agent api_key: got %s, want env-key", cfg.Agent.APIKey)
	}
	if cfg.Agent.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("agent base_url: got %s, want https://api.openai.com/v1", cfg.Agent.BaseURL)
	}
	if cfg.Agent.Model != "gpt-4o-mini" {
		t.Errorf("agent model: got %s, want gpt-4o-mini", cfg.Agent.Model)
	}
	if cfg.Agent.TimeoutDuration() != 90*time.Second {
		t.Errorf("agent timeout: got %v, want 90s", cfg.Agent.TimeoutDuration())
	}
}

func TestAgentOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", `
[agent]
base_url = "https://staging.openai.azure.com/v1"
model = "gpt-4o-mini"
`)
	chdir(t, dir)

	t.Setenv("COVERLINE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Agent.BaseURL != "https://staging.openai.azure.com/v1" {
		t.Errorf("agent base_url: got %s, want https://staging.openai.azure.com/v1", cfg.Agent.BaseURL)
	}
	if cfg.Agent.Model != "gpt-4o-mini" {
		t.Errorf("agent model: got %s, want gpt-4o-mini", cfg.Agent.Model)
	}
	// Base config values should be preserved for non-agent fields
	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080 (from base)", cfg.Server.Port)
	}
	if cfg.Agent.APIKey != "test-key" {
		t.Errorf("agent api_key: got %s, want test-key (from base)", cfg.Agent.APIKey)
	}
}

func TestPipelineDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Pipeline.Workspace != "sessions" {
		t.Errorf("pipeline workspace: got %s, want sessions", cfg.Pipeline.Workspace)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Errorf("pipeline max_attempts: got %d, want 3", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.ExtractConcurrency != 4 {
		t.Errorf("pipeline extract_concurrency: got %d, want 4", cfg.Pipeline.ExtractConcurrency)
	}
	if cfg.Pipeline.CleanupMaxAgeDuration() != 24*time.Hour {
		t.Errorf("pipeline cleanup_max_age: got %v, want 24h", cfg.Pipeline.CleanupMaxAgeDuration())
	}
	if cfg.Pipeline.CleanupIntervalDuration() != time.Hour {
		t.Errorf("pipeline cleanup_interval: got %v, want 1h", cfg.Pipeline.CleanupIntervalDuration())
	}
}

func TestPipelineFromTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Pipeline.MaxAttempts != 5 {
		t.Errorf("pipeline max_attempts: got %d, want 5", cfg.Pipeline.MaxAttempts)
	}
}

func TestPipelineEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COVERLINE_PIPELINE_WORKSPACE", "/tmp/coverline-sessions")
	t.Setenv("COVERLINE_PIPELINE_MAX_ATTEMPTS", "7")
	t.Setenv("COVERLINE_PIPELINE_CLEANUP_MAX_AGE", "48h")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Pipeline.Workspace != "/tmp/coverline-sessions" {
		t.Errorf("pipeline workspace: got %s, want /tmp/coverline-sessions", cfg.Pipeline.Workspace)
	}
	if cfg.Pipeline.MaxAttempts != 7 {
		t.Errorf("pipeline max_attempts: got %d, want 7", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.CleanupMaxAgeDuration() != 48*time.Hour {
		t.Errorf("pipeline cleanup_max_age: got %v, want 48h", cfg.Pipeline.CleanupMaxAgeDuration())
	}
}

func TestPipelineValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig+`
[pipeline]
transient_delay = "bad"
`)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid transient_delay")
	}
	if !strings.Contains(err.Error(), "transient_delay") {
		t.Errorf("error %q does not mention transient_delay", err.Error())
	}
}
