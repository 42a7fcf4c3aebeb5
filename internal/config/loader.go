package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads an optional YAML file and applies environment overrides.
// A missing config file is not an error: the defaults plus environment
// variables describe a fully working receiver and simulator.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	setDefaults()
	bindEnvVariables()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigType("yaml")
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8888)
	viper.SetDefault("server.ops_port", 8889)
	viper.SetDefault("server.endpoint_path", "/boomi/orders")
	viper.SetDefault("server.read_timeout_seconds", 30)
	viper.SetDefault("server.write_timeout_seconds", 30)

	viper.SetDefault("inbox.dir", "./inbox")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("dedup.backend", "memory")
	viper.SetDefault("dedup.ttl_seconds", 0)
	viper.SetDefault("dedup.on_store_error", "deny")
	viper.SetDefault("dedup.key_prefix", "seen:")

	viper.SetDefault("database.redis.host", "localhost")
	viper.SetDefault("database.redis.port", 6379)
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.run_migrations", true)

	viper.SetDefault("archive.enabled", false)

	viper.SetDefault("forward.enabled", false)
	viper.SetDefault("forward.topic", "accepted_orders")

	viper.SetDefault("ratelimit.enabled", false)
	viper.SetDefault("ratelimit.rps", 10.0)
	viper.SetDefault("ratelimit.burst", 20)
	viper.SetDefault("ratelimit.cleanup_interval", 300)
	viper.SetDefault("ratelimit.max_age", 600)

	viper.SetDefault("tracing.enabled", false)

	viper.SetDefault("simulator.url", "http://localhost:8888/boomi/orders")
	viper.SetDefault("simulator.templates_dir", "")
	viper.SetDefault("simulator.bulk_count", 5)
	viper.SetDefault("simulator.auto_interval_seconds", 30)
	viper.SetDefault("simulator.timeout_seconds", 5)
}

func bindEnvVariables() {
	// Short names from the original deployment surface.
	viper.BindEnv("server.host", "HOST", "SERVER_HOST")
	viper.BindEnv("server.port", "PORT", "SERVER_PORT")
	viper.BindEnv("server.ops_port", "OPS_PORT", "SERVER_OPS_PORT")
	viper.BindEnv("server.endpoint_path", "ENDPOINT_PATH", "SERVER_ENDPOINT_PATH")
	viper.BindEnv("inbox.dir", "INBOX_DIR")
	viper.BindEnv("simulator.url", "BOOMI_URL", "SIMULATOR_URL")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("dedup.backend", "DEDUP_BACKEND")
	viper.BindEnv("dedup.ttl_seconds", "DEDUP_TTL_SECONDS")
	viper.BindEnv("dedup.on_store_error", "DEDUP_ON_STORE_ERROR")
	viper.BindEnv("dedup.key_prefix", "DEDUP_KEY_PREFIX")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	viper.BindEnv("archive.enabled", "ARCHIVE_ENABLED")

	viper.BindEnv("forward.enabled", "FORWARD_ENABLED")
	viper.BindEnv("forward.brokers", "FORWARD_BROKERS")
	viper.BindEnv("forward.topic", "FORWARD_TOPIC")

	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")

	viper.BindEnv("simulator.templates_dir", "SIMULATOR_TEMPLATES_DIR")
	viper.BindEnv("simulator.timeout_seconds", "SIMULATOR_TIMEOUT_SECONDS")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("FORWARD_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Forward.Brokers = brokers
		}
	}

	return nil
}
