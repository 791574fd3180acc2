package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

const (
	ModeDev     = "dev"
	ModeRelease = "release"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Enabled is false without a host; the service then runs without preferences.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	Certificate Certs    `yaml:"certificate"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Paths struct {
	Workers    string `yaml:"workers"`
	Stations   string `yaml:"stations"`
	Attendance string `yaml:"attendance"` // {id} = GeoVictoria identifier
	Tasks      string `yaml:"tasks"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

type UpstreamConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	Paths            Paths         `yaml:"paths"`
	RequestDelay     time.Duration `yaml:"request_delay"`
	RecentWindowDays int           `yaml:"recent_window_days"`
	ActivityLimit    int           `yaml:"activity_limit"`
	Breaker          BreakerConfig `yaml:"breaker"`
}

type ShiftConfig struct {
	Start      string        `yaml:"start"` // HH:MM
	ExitOffset time.Duration `yaml:"exit_offset"`
}

type AssistanceConfig struct {
	DefaultDays int `yaml:"default_days"`
}

type Config struct {
	Version    string           `yaml:"version"`
	Mode       string           `yaml:"mode"`
	Timezone   string           `yaml:"timezone"`
	Server     ServerConfig     `yaml:"server"`
	DB         DatabaseConfig   `yaml:"database"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Shift      ShiftConfig      `yaml:"shift"`
	Assistance AssistanceConfig `yaml:"assistance"`
}

// Load reads the YAML file. ${NAME} placeholders are replaced from the environment first,
// so secrets such as the DB password can stay out of the file.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(expandEnv(buf))
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// unset variables expand to ""
func expandEnv(buf []byte) []byte {
	return envRef.ReplaceAllFunc(buf, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if cfg.Mode != ModeDev && cfg.Mode != ModeRelease {
		return nil, fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, cfg.Mode)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, _, err := ParseClock(cfg.Shift.Start); err != nil {
		return nil, fmt.Errorf("shift.start: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	u := &c.Upstream
	if u.Timeout <= 0 {
		u.Timeout = 30 * time.Second
	}
	if u.Paths.Workers == "" {
		u.Paths.Workers = "/api/workers"
	}
	if u.Paths.Stations == "" {
		u.Paths.Stations = "/api/stations"
	}
	if u.Paths.Attendance == "" {
		u.Paths.Attendance = "/api/geovictoria/attendance/{id}"
	}
	if u.Paths.Tasks == "" {
		u.Paths.Tasks = "/api/task-instances/history"
	}
	if u.RequestDelay <= 0 {
		u.RequestDelay = 150 * time.Millisecond
	}
	if u.RecentWindowDays <= 0 {
		u.RecentWindowDays = 7
	}
	if u.ActivityLimit <= 0 {
		u.ActivityLimit = 500
	}
	if u.Breaker.MaxRequests == 0 {
		u.Breaker.MaxRequests = 3
	}
	if u.Breaker.Interval <= 0 {
		u.Breaker.Interval = 60 * time.Second
	}
	if u.Breaker.Timeout <= 0 {
		u.Breaker.Timeout = 30 * time.Second
	}
	if u.Breaker.FailureThreshold == 0 {
		u.Breaker.FailureThreshold = 5
	}
	if c.Shift.Start == "" {
		c.Shift.Start = "08:20"
	}
	if c.Shift.ExitOffset <= 0 {
		c.Shift.ExitOffset = 30 * time.Minute
	}
	if c.Assistance.DefaultDays <= 0 {
		c.Assistance.DefaultDays = 30
	}
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
