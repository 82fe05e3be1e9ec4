package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Host            string        `yaml:"host" env:"TOMORU_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"TOMORU_PORT" env-default:"3000"`
	LogFile         string        `yaml:"log_file" env:"TOMORU_LOG_FILE"`
	Debug           bool          `yaml:"debug" env:"TOMORU_DEBUG" env-default:"false"`
	ReportInterval  time.Duration `yaml:"report_interval" env:"TOMORU_REPORT_INTERVAL" env-default:"1s"`
	MetricsEnabled  bool          `yaml:"metrics_enabled" env:"TOMORU_METRICS_ENABLED" env-default:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TOMORU_SHUTDOWN_TIMEOUT" env-default:"5s"`

	// Redis publishing of reports is disabled while RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr" env:"TOMORU_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"TOMORU_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"TOMORU_REDIS_DB" env-default:"0"`
	RedisChannel  string        `yaml:"redis_channel" env:"TOMORU_REDIS_CHANNEL" env-default:"tomoru:reports"`
	RedisTTL      time.Duration `yaml:"redis_ttl" env:"TOMORU_REDIS_TTL" env-default:"24h"`
}

// Load reads defaults and environment, then the YAML file named by -config
// (or TOMORU_CONFIG), then applies command-line flags on top.
func Load(args []string) (*Config, error) {
	path := configPath(args)

	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	fs := flag.NewFlagSet("tomoru", flag.ContinueOnError)
	fs.String("config", path, "Path to a YAML config file")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Interface to listen on")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path (stderr when empty)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	fs.DurationVar(&cfg.ReportInterval, "report-interval", cfg.ReportInterval, "Interval between stats reports")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Expose Prometheus metrics on /metrics")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for publishing reports (disabled when empty)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database")
	fs.StringVar(&cfg.RedisChannel, "redis-channel", cfg.RedisChannel, "Redis channel reports are published on")
	fs.DurationVar(&cfg.RedisTTL, "redis-ttl", cfg.RedisTTL, "Expiry of report snapshots stored in Redis")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseFlags() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("invalid report interval %s: must be positive", c.ReportInterval)
	}
	if c.RedisAddr != "" && c.RedisChannel == "" {
		return fmt.Errorf("redis channel must be set when redis is enabled")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// configPath finds the -config flag ahead of the full flag parse, since the
// file supplies the defaults the other flags are registered with.
func configPath(args []string) string {
	path := os.Getenv("TOMORU_CONFIG")
	for i := 0; i < len(args); i++ {
		a := strings.TrimPrefix(args[i], "-")
		a = strings.TrimPrefix(a, "-")
		switch {
		case a == "config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(a, "config="):
			path = strings.TrimPrefix(a, "config=")
		case a == "":
			// "--" ends flag parsing
			return path
		}
	}
	return path
}
