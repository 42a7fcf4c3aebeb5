package config

import (
	"fmt"
	"strings"
)

// ValidateStatic checks everything that can be verified without touching
// the network or filesystem.
func ValidateStatic(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateInbox(&cfg.Inbox); err != nil {
		return err
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}
	if err := validateDedup(&cfg.Dedup); err != nil {
		return err
	}
	if err := validateForward(&cfg.Forward); err != nil {
		return err
	}
	if err := validateArchive(cfg); err != nil {
		return err
	}
	if err := validateSimulator(&cfg.Simulator); err != nil {
		return err
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", cfg.Port)
	}
	if cfg.OpsPort < 0 || cfg.OpsPort > 65535 {
		return fmt.Errorf("server.ops_port must be in [0, 65535], got %d", cfg.OpsPort)
	}
	if cfg.EndpointPath == "" || !strings.HasPrefix(cfg.EndpointPath, "/") {
		return fmt.Errorf("server.endpoint_path must be a non-empty absolute path, got %q", cfg.EndpointPath)
	}
	return nil
}

func validateInbox(cfg *InboxConfig) error {
	if cfg.Dir == "" {
		return fmt.Errorf("inbox.dir must not be empty")
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	switch cfg.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", cfg.Level)
	}
}

func validateDedup(cfg *DedupConfig) error {
	switch cfg.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("dedup.backend must be \"memory\" or \"redis\", got %q", cfg.Backend)
	}
	switch cfg.OnStoreError {
	case "allow", "deny":
	default:
		return fmt.Errorf("dedup.on_store_error must be \"allow\" or \"deny\", got %q", cfg.OnStoreError)
	}
	if cfg.TTLSeconds < 0 {
		return fmt.Errorf("dedup.ttl_seconds must not be negative, got %d", cfg.TTLSeconds)
	}
	return nil
}

func validateForward(cfg *ForwardConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("forward.brokers is required when forwarding is enabled")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("forward.topic is required when forwarding is enabled")
	}
	return nil
}

func validateArchive(cfg *Config) error {
	if !cfg.Archive.Enabled {
		return nil
	}
	pg := cfg.Database.Postgres
	if pg.Host == "" || pg.User == "" || pg.DBName == "" {
		return fmt.Errorf("archive requires database.postgres host, user and dbname")
	}
	return nil
}

func validateSimulator(cfg *SimulatorConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("simulator.url must not be empty")
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("simulator.timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.BulkCount <= 0 {
		return fmt.Errorf("simulator.bulk_count must be positive, got %d", cfg.BulkCount)
	}
	return nil
}
