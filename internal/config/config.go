package config

type Config struct {
	Server    ServerConfig
	Inbox     InboxConfig
	Logging   LoggingConfig
	Dedup     DedupConfig
	Database  DatabaseConfig
	Archive   ArchiveConfig
	Forward   ForwardConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Simulator SimulatorConfig
}

type ServerConfig struct {
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	OpsPort             int           `mapstructure:"ops_port"`
	EndpointPath        string        `mapstructure:"endpoint_path"`
	ReadTimeoutSeconds  int           `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int           `mapstructure:"write_timeout_seconds"`
}

type InboxConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DedupConfig selects the seen-identifier store backend. The memory backend
// keeps state for the process lifetime only; redis shares it across replicas.
type DedupConfig struct {
	Backend      string `mapstructure:"backend"`
	TTLSeconds   int    `mapstructure:"ttl_seconds"`
	OnStoreError string `mapstructure:"on_store_error"` // "allow" or "deny"
	KeyPrefix    string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis         RedisConfig    `mapstructure:"redis"`
	Postgres      PostgresConfig `mapstructure:"postgres"`
	RunMigrations bool           `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ForwardConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type TracingConfig struct {
	Enabled     bool       `mapstructure:"enabled"`
	ServiceName string     `mapstructure:"service_name"`
	OTLP        OTLPConfig `mapstructure:"otlp"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SimulatorConfig struct {
	URL                 string `mapstructure:"url"`
	TemplatesDir        string `mapstructure:"templates_dir"`
	BulkCount           int    `mapstructure:"bulk_count"`
	AutoIntervalSeconds int    `mapstructure:"auto_interval_seconds"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
