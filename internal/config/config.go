package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ReferralConfig struct {
	Env        string `yaml:"env"`
	ReferralDB `yaml:"referral_db"`
	LogConfig  `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	OpsServer    `yaml:"ops_server"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	MigrationsPath string       `yaml:"migrations_path" env-default:"migrations"`
}

type ReferralDB struct {
	Dsn string `yaml:"dsn"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

type KafkaService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type OpsServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8087"`
}

// DispatcherConfig carries one explicit policy per lane. Disbursement
// correctness depends on bounded, observable retry behavior, so none of
// this is left to library defaults.
type DispatcherConfig struct {
	Critical LaneConfig `yaml:"critical"`
	Batch    LaneConfig `yaml:"batch"`
	Default  LaneConfig `yaml:"default"`
}

type LaneConfig struct {
	Concurrency  int           `yaml:"concurrency" env-default:"2"`
	MaxAttempts  int           `yaml:"max_attempts" env-default:"5"`
	BackoffBase  time.Duration `yaml:"backoff_base" env-default:"2s"`
	BackoffCap   time.Duration `yaml:"backoff_cap" env-default:"5m"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"1s"`
	JobTimeout   time.Duration `yaml:"job_timeout" env-default:"2m"`
}

type ScheduleConfig struct {
	DisburseInterval     time.Duration `yaml:"disburse_interval" env-default:"10m"`
	SweepInterval        time.Duration `yaml:"sweep_interval" env-default:"168h"`
	RankSnapshotInterval time.Duration `yaml:"rank_snapshot_interval" env-default:"24h"`
}

func MustLoad() *ReferralConfig {
	configPath := os.Getenv("REFERRAL_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("REFERRAL_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg ReferralConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
