package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, 8889, cfg.Server.OpsPort)
	assert.Equal(t, "/boomi/orders", cfg.Server.EndpointPath)
	assert.Equal(t, "./inbox", cfg.Inbox.Dir)
	assert.Equal(t, "memory", cfg.Dedup.Backend)
	assert.Equal(t, "deny", cfg.Dedup.OnStoreError)
	assert.Equal(t, "seen:", cfg.Dedup.KeyPrefix)
	assert.False(t, cfg.Archive.Enabled)
	assert.False(t, cfg.Forward.Enabled)
	assert.Equal(t, "http://localhost:8888/boomi/orders", cfg.Simulator.URL)
	assert.Equal(t, 5, cfg.Simulator.BulkCount)
	assert.Equal(t, 30, cfg.Simulator.AutoIntervalSeconds)
	assert.Equal(t, 5, cfg.Simulator.TimeoutSeconds)
}

func TestLoadConfig_ShortEnvOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("INBOX_DIR", "/tmp/custom-inbox")
	t.Setenv("BOOMI_URL", "http://receiver:9000/boomi/orders")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/custom-inbox", cfg.Inbox.Dir)
	assert.Equal(t, "http://receiver:9000/boomi/orders", cfg.Simulator.URL)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9100
  endpoint_path: /integration/orders
inbox:
  dir: /var/lib/inbox
dedup:
  backend: memory
  on_store_error: allow
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "/integration/orders", cfg.Server.EndpointPath)
	assert.Equal(t, "/var/lib/inbox", cfg.Inbox.Dir)
	assert.Equal(t, "allow", cfg.Dedup.OnStoreError)
	// Defaults still fill unset keys.
	assert.Equal(t, 8889, cfg.Server.OpsPort)
}

func TestLoadConfig_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644))

	t.Setenv("PORT", "9200")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoadConfig_ForwardBrokersCSV(t *testing.T) {
	t.Setenv("FORWARD_ENABLED", "true")
	t.Setenv("FORWARD_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.Forward.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Forward.Brokers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantError string
	}{
		{
			name:      "valid defaults",
			mutate:    func(cfg *Config) {},
			wantError: "",
		},
		{
			name:      "bad port",
			mutate:    func(cfg *Config) { cfg.Server.Port = 70000 },
			wantError: "port",
		},
		{
			name:      "endpoint without leading slash",
			mutate:    func(cfg *Config) { cfg.Server.EndpointPath = "boomi/orders" },
			wantError: "endpoint_path",
		},
		{
			name:      "unknown dedup backend",
			mutate:    func(cfg *Config) { cfg.Dedup.Backend = "memcached" },
			wantError: "backend",
		},
		{
			name:      "unknown store error fallback",
			mutate:    func(cfg *Config) { cfg.Dedup.OnStoreError = "explode" },
			wantError: "on_store_error",
		},
		{
			name:      "forward enabled without brokers",
			mutate:    func(cfg *Config) { cfg.Forward.Enabled = true },
			wantError: "brokers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig("")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = ValidateStatic(cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}
