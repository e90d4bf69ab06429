package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration, loaded from app.env with
// environment variable overrides.
type Config struct {
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS"`
	MetricsAddress     string        `mapstructure:"METRICS_ADDRESS"`
	PostgresConn       string        `mapstructure:"POSTGRES_CONN"`
	MigrationURL       string        `mapstructure:"MIGRATION_URL"`
	RabbitURL          string        `mapstructure:"RABBITMQ_URL"`
	QuotaMax           int           `mapstructure:"QUOTA_MAX"`
	QuotaWarnThreshold int           `mapstructure:"QUOTA_WARN_THRESHOLD"`
	WorkerConcurrency  int           `mapstructure:"WORKER_CONCURRENCY"`
	OutboxPollInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize    int           `mapstructure:"OUTBOX_BATCH_SIZE"`
}

// Load reads the configuration from the given path.
func Load(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("METRICS_ADDRESS", ":8081")
	viper.SetDefault("QUOTA_MAX", 10)
	viper.SetDefault("QUOTA_WARN_THRESHOLD", 8)
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("OUTBOX_POLL_INTERVAL", time.Second)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 100)

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	return
}
