// Package config loads the YAML configuration shared by the netsurvey tools.
//
// Every value can also be given as a command line flag; flags that are set
// explicitly win over the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSQLiteFile   = "/tmp/netsurvey.sqlite"
	DefaultMySQLServer  = "127.0.0.1:3306"
	DefaultMySQLDBName  = "netsurvey"
	DefaultServerURL    = "https://localhost:8443"
	DefaultListen       = ":8443"
	DefaultIWInterface  = "wlan0"
	DefaultScanInterval = 10 * time.Second
)

type Config struct {
	Identifier string       `yaml:"identifier,omitempty"`
	Source     SourceConfig `yaml:"source"`
	Output     OutputConfig `yaml:"output"`
	Filter     FilterConfig `yaml:"filter,omitempty"`
	Listen     ListenConfig `yaml:"listen,omitempty"`
}

// SourceConfig selects where records come from: "iw" or "replay".
type SourceConfig struct {
	Type   string       `yaml:"type"`
	IW     IWConfig     `yaml:"iw,omitempty"`
	Replay ReplayConfig `yaml:"replay,omitempty"`
}

type IWConfig struct {
	Interface string   `yaml:"interface"`
	Interval  Duration `yaml:"interval"`
	// Latitude and Longitude pin the scanner to a fixed position.
	Latitude  *float64 `yaml:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty"`
}

type ReplayConfig struct {
	Path  string   `yaml:"path"`
	Delay Duration `yaml:"delay,omitempty"`
}

// OutputConfig selects the exporter: "csv", "sqlite", "mysql" or "server".
type OutputConfig struct {
	Type   string       `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	MySQL  MySQLConfig  `yaml:"mysql,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

type SQLiteConfig struct {
	File string `yaml:"file"`
}

type MySQLConfig struct {
	Server       string `yaml:"server"`
	User         string `yaml:"user"`
	PasswordFile string `yaml:"password_file"`
	DBName       string `yaml:"db_name"`
}

type ServerConfig struct {
	URL       string `yaml:"url"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

type FilterConfig struct {
	MinSignal    *float32 `yaml:"min_signal,omitempty"`
	SSID         string   `yaml:"ssid,omitempty"`
	Technologies []string `yaml:"technologies,omitempty"`
}

type ListenConfig struct {
	Address  string `yaml:"address"`
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Source.IW.Interface == "" {
		c.Source.IW.Interface = DefaultIWInterface
	}
	if c.Source.IW.Interval == 0 {
		c.Source.IW.Interval = Duration(DefaultScanInterval)
	}
	if c.Output.SQLite.File == "" {
		c.Output.SQLite.File = DefaultSQLiteFile
	}
	if c.Output.MySQL.Server == "" {
		c.Output.MySQL.Server = DefaultMySQLServer
	}
	if c.Output.MySQL.DBName == "" {
		c.Output.MySQL.DBName = DefaultMySQLDBName
	}
	if c.Output.Server.URL == "" {
		c.Output.Server.URL = DefaultServerURL
	}
	if c.Listen.Address == "" {
		c.Listen.Address = DefaultListen
	}
}
