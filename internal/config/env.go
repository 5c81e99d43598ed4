package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WORKTRACK_TRACKER_POLL_INTERVAL.
const EnvPrefix = "WORKTRACK"

// Load reads configuration from configPath (optional), then applies
// environment overrides on top of Default.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/worktrack")
		}
		v.AddConfigPath("/etc/worktrack")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// New returns defaults with environment overrides, ignoring config files.
func New() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tracker.poll_interval", d.Tracker.PollInterval)
	v.SetDefault("tracker.min_poll_interval", d.Tracker.MinPollInterval)
	v.SetDefault("tracker.max_poll_interval", d.Tracker.MaxPollInterval)
	v.SetDefault("tracker.internal_poll", d.Tracker.InternalPoll)
	v.SetDefault("tracker.autostart", d.Tracker.Autostart)

	v.SetDefault("screenshots.interval", d.Screenshots.Interval)
	v.SetDefault("screenshots.upload_url", d.Screenshots.UploadURL)
	v.SetDefault("screenshots.timeout", d.Screenshots.Timeout)

	v.SetDefault("auth.token", d.Auth.Token)
	v.SetDefault("agent.user_id", d.Agent.UserID)

	v.SetDefault("sink.type", d.Sink.Type)
	v.SetDefault("sink.http.url", d.Sink.HTTP.URL)
	v.SetDefault("sink.http.timeout", d.Sink.HTTP.Timeout)
	v.SetDefault("sink.redis.host", d.Sink.Redis.Host)
	v.SetDefault("sink.redis.port", d.Sink.Redis.Port)
	v.SetDefault("sink.redis.password", d.Sink.Redis.Password)
	v.SetDefault("sink.redis.db", d.Sink.Redis.DB)
	v.SetDefault("sink.redis.queue", d.Sink.Redis.Queue)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("daemon.pid_file", d.Daemon.PIDFile)
	v.SetDefault("daemon.log_file", d.Daemon.LogFile)

	v.SetDefault("web.host", d.Web.Host)
	v.SetDefault("web.port", d.Web.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
