package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/rentnest/internal/utils"
)

// Config is the server configuration. Zero values are replaced by defaults.
type Config struct {
	// Addr is the TCP listen address.
	Addr string `yaml:"addr" json:"addr"`

	// DataDir holds the database, images and (by default) master.key.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// DatabasePath defaults to <data_dir>/rentnest.db.
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// ImageDir defaults to <data_dir>/images.
	ImageDir string `yaml:"image_dir" json:"image_dir"`

	PoolSize int `yaml:"pool_size" json:"pool_size"`

	SessionTTL      Duration `yaml:"session_ttl" json:"session_ttl"`
	SessionSweep    Duration `yaml:"session_sweep" json:"session_sweep"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	MaxImageBytes        int64 `yaml:"max_image_bytes" json:"max_image_bytes"`
	MaxImagesPerProperty int   `yaml:"max_images_per_property" json:"max_images_per_property"`

	// PIIEncryption seals phone numbers at rest with the master key.
	PIIEncryption *bool `yaml:"pii_encryption" json:"pii_encryption"`

	// MasterKeyFile is read when MASTER_KEY_HEX is unset. Defaults to <data_dir>/master.key.
	MasterKeyFile string `yaml:"master_key_file" json:"master_key_file"`

	BcryptCost int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	TLSCert string `yaml:"tls_cert" json:"tls_cert"`
	TLSKey  string `yaml:"tls_key" json:"tls_key"`

	Gzip *bool `yaml:"gzip" json:"gzip"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

const (
	DefaultAddr                 = ":8080"
	DefaultPoolSize             = 4
	DefaultSessionTTL           = 30 * 24 * time.Hour
	DefaultSessionSweep         = time.Hour
	DefaultShutdownTimeout      = 10 * time.Second
	DefaultMaxImageBytes        = 8 << 20
	DefaultMaxImagesPerProperty = 12
)

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML (.yaml/.yml) or JSON (.json/.jsonc, comments allowed) file,
// applies environment overrides and defaults, and validates the result.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load with an extra override step, used for command-line flags.
// override runs after the environment and before defaults, so a flag-set
// data_dir still moves the derived paths.
func LoadWith(path string, override func(*Config)) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, c)
		case ".json", ".jsonc":
			err = json.Unmarshal(jsonc.ToJSON(data), c)
		default:
			return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	c.applyEnv()
	if override != nil {
		override(c)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Addr = utils.EnvOrDefault("RENTNEST_ADDR", c.Addr)
	c.DataDir = utils.EnvOrDefault("RENTNEST_DATA_DIR", c.DataDir)
	c.LogLevel = utils.EnvOrDefault("RENTNEST_LOG_LEVEL", c.LogLevel)
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.DataDir == "" {
		c.DataDir = utils.GetDataDir()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "rentnest.db")
	}
	if c.ImageDir == "" {
		c.ImageDir = filepath.Join(c.DataDir, "images")
	}
	if c.MasterKeyFile == "" {
		c.MasterKeyFile = filepath.Join(c.DataDir, "master.key")
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = Duration(DefaultSessionTTL)
	}
	if c.SessionSweep <= 0 {
		c.SessionSweep = Duration(DefaultSessionSweep)
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.MaxImagesPerProperty <= 0 {
		c.MaxImagesPerProperty = DefaultMaxImagesPerProperty
	}
	// Default: encryption ON
	if c.PIIEncryption == nil {
		on := true
		c.PIIEncryption = &on
	}
	if c.Gzip == nil {
		on := true
		c.Gzip = &on
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("config: tls_cert and tls_key must be set together")
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return fmt.Errorf("config: bcrypt_cost %d out of range 4..31", c.BcryptCost)
	}
	if c.SessionTTL < Duration(time.Minute) {
		return fmt.Errorf("config: session_ttl %s is shorter than a minute", time.Duration(c.SessionTTL))
	}
	return nil
}

// EncryptPII reports whether phone numbers are sealed at rest.
func (c *Config) EncryptPII() bool { return c.PIIEncryption != nil && *c.PIIEncryption }

// GzipEnabled reports whether responses are compressed.
func (c *Config) GzipEnabled() bool { return c.Gzip != nil && *c.Gzip }

// TLSEnabled reports whether the server should serve HTTPS.
func (c *Config) TLSEnabled() bool { return c.TLSCert != "" }
