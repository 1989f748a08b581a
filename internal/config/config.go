package config

import "time"

type Config struct {
	ConfigVersion int             `yaml:"configVersion"`
	Store         StoreConfig     `yaml:"store"`
	Detection     DetectionConfig `yaml:"detection"`
	Whitelist     WhitelistConfig `yaml:"whitelist"`
	Alerts        AlertsConfig    `yaml:"alerts"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
	Reports       ReportsConfig   `yaml:"reports"`
	Server        ServerConfig    `yaml:"server"`
	Logging       LoggingConfig   `yaml:"logging"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Watch         WatchConfig     `yaml:"watch"`

	baseDir string `yaml:"-"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type DetectionConfig struct {
	// HardcodedKeywords enables the broad built-in keyword rule. Nil means enabled.
	HardcodedKeywords *bool  `yaml:"hardcodedKeywords"`
	TokenChainMin     int    `yaml:"tokenChainMin"`
	ExtraRules        []Rule `yaml:"extraRules"`
}

type Rule struct {
	ID    string    `yaml:"id"`
	Tags  []string  `yaml:"tags"`
	Match RuleMatch `yaml:"match"`
}

type RuleMatch struct {
	Type         string `yaml:"type"`
	Pattern      string `yaml:"pattern"`
	PatternsFile string `yaml:"patternsFile"`
}

type WhitelistConfig struct {
	Match string   `yaml:"match"`
	Seed  []string `yaml:"seed"`
}

type AlertsConfig struct {
	OnScreen   *bool          `yaml:"onScreen"`
	Desktop    bool           `yaml:"desktop"`
	PreviewMax int            `yaml:"previewMax"`
	Throttle   ThrottleConfig `yaml:"throttle"`
}

type ThrottleConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type TelemetryConfig struct {
	RawCandidates   bool          `yaml:"rawCandidates"`
	GateByWhitelist bool          `yaml:"gateByWhitelist"`
	Endpoint        string        `yaml:"endpoint"`
	Timeout         time.Duration `yaml:"timeout"`
}

type ReportsConfig struct {
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"`
}

type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	TelemetryLog string `yaml:"telemetryLog"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type WatchConfig struct {
	Origin  string `yaml:"origin"`
	MaxSize int    `yaml:"maxSize"`
}

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

const (
	MatchExact       = "exact"
	MatchSubdomain   = "subdomain"
	MatchRegistrable = "registrable"
)

const (
	DefaultTokenChainMin = 2
	DefaultPreviewMax    = 200
	DefaultMaxBodyBytes  = 1 << 20
	DefaultTimeout       = 3 * time.Second
	DefaultWatchMaxSize  = 1 << 20
)

// Default returns a config usable without a file: in-memory store, every rule on.
func Default() *Config {
	cfg := &Config{ConfigVersion: 1}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = StoreMemory
	}
	if c.Detection.HardcodedKeywords == nil {
		c.Detection.HardcodedKeywords = boolPtr(true)
	}
	if c.Detection.TokenChainMin == 0 {
		c.Detection.TokenChainMin = DefaultTokenChainMin
	}
	if c.Whitelist.Match == "" {
		c.Whitelist.Match = MatchExact
	}
	if c.Alerts.OnScreen == nil {
		c.Alerts.OnScreen = boolPtr(true)
	}
	if c.Alerts.PreviewMax == 0 {
		c.Alerts.PreviewMax = DefaultPreviewMax
	}
	if c.Telemetry.Timeout == 0 {
		c.Telemetry.Timeout = DefaultTimeout
	}
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8791"
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Watch.Origin == "" {
		c.Watch.Origin = "clipboard"
	}
	if c.Watch.MaxSize == 0 {
		c.Watch.MaxSize = DefaultWatchMaxSize
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		c.Metrics.Listen = "127.0.0.1:9791"
	}
}

func (c *Config) HardcodedKeywordsEnabled() bool {
	return c.Detection.HardcodedKeywords == nil || *c.Detection.HardcodedKeywords
}

func (c *Config) OnScreenAlerts() bool {
	return c.Alerts.OnScreen == nil || *c.Alerts.OnScreen
}

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}

func boolPtr(v bool) *bool {
	return &v
}
