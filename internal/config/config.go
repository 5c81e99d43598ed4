package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Tracker     TrackerConfig    `mapstructure:"tracker" yaml:"tracker"`
	Screenshots ScreenshotConfig `mapstructure:"screenshots" yaml:"screenshots"`
	Auth        AuthConfig       `mapstructure:"auth" yaml:"auth"`
	Agent       AgentConfig      `mapstructure:"agent" yaml:"agent"`
	Sink        SinkConfig       `mapstructure:"sink" yaml:"sink"`
	Database    DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Daemon      DaemonConfig     `mapstructure:"daemon" yaml:"daemon"`
	Web         WebConfig        `mapstructure:"web" yaml:"web"`
	Logging     LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	MinPollInterval time.Duration `mapstructure:"min_poll_interval" yaml:"min_poll_interval"`
	MaxPollInterval time.Duration `mapstructure:"max_poll_interval" yaml:"max_poll_interval"`
	InternalPoll    bool          `mapstructure:"internal_poll" yaml:"internal_poll"` // false hands tick to an external host
	Autostart       bool          `mapstructure:"autostart" yaml:"autostart"`
}

type ScreenshotConfig struct {
	Interval  time.Duration `mapstructure:"interval" yaml:"interval"`
	UploadURL string        `mapstructure:"upload_url" yaml:"upload_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type AuthConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type AgentConfig struct {
	UserID string `mapstructure:"user_id" yaml:"user_id"`
}

// SinkConfig selects where emitted usage records are forwarded.
type SinkConfig struct {
	Type  string          `mapstructure:"type" yaml:"type"` // log, http or redis
	HTTP  HTTPSinkConfig  `mapstructure:"http" yaml:"http"`
	Redis RedisSinkConfig `mapstructure:"redis" yaml:"redis"`
}

type HTTPSinkConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type RedisSinkConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Queue    string `mapstructure:"queue" yaml:"queue"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty means ~/.config/worktrack/worktrack.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// WebConfig holds control API configuration
type WebConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

const (
	SinkLog   = "log"
	SinkHTTP  = "http"
	SinkRedis = "redis"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    time.Second,
			MinPollInterval: time.Second,
			MaxPollInterval: 60 * time.Second,
			InternalPoll:    true,
		},
		Screenshots: ScreenshotConfig{
			Interval:  30 * time.Second,
			UploadURL: "http://localhost:9000/employee/upload-screenshot",
			Timeout:   30 * time.Second,
		},
		Sink: SinkConfig{
			Type: SinkLog,
			HTTP: HTTPSinkConfig{
				URL:     "http://localhost:9000/employee/event_buffering",
				Timeout: 10 * time.Second,
			},
			Redis: RedisSinkConfig{
				Host:  "localhost",
				Port:  6379,
				Queue: "queue_usage",
			},
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/worktrack-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/worktrack-%d.log", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 9100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Screenshots.Interval <= 0 {
		return fmt.Errorf("screenshot interval must be positive, got %v", c.Screenshots.Interval)
	}

	if c.Screenshots.UploadURL == "" {
		return fmt.Errorf("screenshot upload URL cannot be empty")
	}

	switch c.Sink.Type {
	case SinkLog:
	case SinkHTTP:
		if c.Sink.HTTP.URL == "" {
			return fmt.Errorf("http sink requires sink.http.url")
		}
	case SinkRedis:
		if c.Sink.Redis.Queue == "" {
			return fmt.Errorf("redis sink requires sink.redis.queue")
		}
		if c.Sink.Redis.Port < 0 || c.Sink.Redis.Port > 65535 {
			return fmt.Errorf("redis port must be between 0 and 65535, got %d", c.Sink.Redis.Port)
		}
	default:
		return fmt.Errorf("unknown sink type %q (valid: log, http, redis)", c.Sink.Type)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (valid: json, text)", c.Logging.Format)
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// WebAddress returns host:port of the control API.
func (c *Config) WebAddress() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String renders the configuration as YAML with secrets masked.
func (c *Config) String() string {
	masked := *c
	if masked.Auth.Token != "" {
		masked.Auth.Token = "********"
	}
	if masked.Sink.Redis.Password != "" {
		masked.Sink.Redis.Password = "********"
	}

	out, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}
