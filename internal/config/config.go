// Package config loads the connection settings for the SmartOS inventory.
//
// Settings come from a YAML file, or from the INI file that older installs
// keep at /etc/ansible/smartos.ini. When no file exists the defaults point at
// root@10.0.3.2 with ~/.ssh/id_rsa. Environment variables override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"smartos-inventory/internal/domain"
)

// Defaults
const (
	DefaultHost       = "10.0.3.2"
	DefaultPort       = 22
	DefaultUser       = "root"
	DefaultKeyFile    = "~/.ssh/id_rsa"
	DefaultKnownHosts = "~/.ssh/known_hosts"
	DefaultExecutable = "ssh"
	DefaultTransport  = "auto"
)

// INISection is the section read from legacy INI files
const INISection = "smartos"

// Environment overrides
const (
	EnvHost    = "SMARTOS_HOST"
	EnvPort    = "SMARTOS_PORT"
	EnvUser    = "SMARTOS_USER"
	EnvKeyFile = "SMARTOS_KEY_FILE"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Files ending in .ini are
// read as INI, everything else as YAML.
func LoadFromPath(path string) (*Config, string, error) {
	var (
		cfg *Config
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		cfg, err = loadINI(path)
	} else {
		cfg, err = loadYAML(path)
	}
	if err != nil {
		return nil, path, err
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func loadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	sec := file.Section(INISection)
	cfg := &Config{
		SSH: SSHConfig{
			Host:       sec.Key("host").String(),
			User:       sec.Key("user").String(),
			KeyFile:    sec.Key("key_file").String(),
			Passphrase: sec.Key("passphrase").String(),
			KnownHosts: sec.Key("known_hosts").String(),
			Executable: sec.Key("ssh_executable").String(),
			Transport:  sec.Key("transport").String(),
		},
	}

	if sec.HasKey("port") {
		port, err := sec.Key("port").Int()
		if err != nil {
			return nil, fmt.Errorf("parse config: port: %w", err)
		}
		cfg.SSH.Port = port
	}
	if sec.HasKey("timeout") {
		timeout, err := sec.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("parse config: timeout: %w", err)
		}
		cfg.SSH.Timeout = Duration(timeout)
	}

	return cfg, nil
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.SSH.Host == "" {
		c.SSH.Host = DefaultHost
	}
	if c.SSH.Port == 0 {
		c.SSH.Port = DefaultPort
	}
	if c.SSH.User == "" {
		c.SSH.User = DefaultUser
	}
	if c.SSH.KeyFile == "" {
		c.SSH.KeyFile = DefaultKeyFile
	}
	if c.SSH.KnownHosts == "" {
		c.SSH.KnownHosts = DefaultKnownHosts
	}
	if c.SSH.Executable == "" {
		c.SSH.Executable = DefaultExecutable
	}
	if c.SSH.Transport == "" {
		c.SSH.Transport = DefaultTransport
	}
}

// applyEnv overrides file values from the environment
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvHost); v != "" {
		c.SSH.Host = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.SSH.User = v
	}
	if v := os.Getenv(EnvKeyFile); v != "" {
		c.SSH.KeyFile = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.SSH.Port = port
	}
	return nil
}

// Validate checks the settings before any connection is attempted
func (c *Config) Validate() error {
	if c.SSH.Host == "" || strings.HasPrefix(c.SSH.Host, "-") {
		return fmt.Errorf("invalid ssh host %q", c.SSH.Host)
	}
	if strings.HasPrefix(c.SSH.User, "-") {
		return fmt.Errorf("invalid ssh user %q", c.SSH.User)
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("ssh port %d out of range", c.SSH.Port)
	}
	switch c.SSH.Transport {
	case "auto", "ssh", "exec":
	default:
		return fmt.Errorf("unknown transport %q (want auto, ssh or exec)", c.SSH.Transport)
	}
	if c.SSH.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.SSH.Timeout.Duration())
	}
	return nil
}

// Connection resolves the settings into a ConnectionSpec, expanding ~ in paths
func (c *Config) Connection() (domain.ConnectionSpec, error) {
	keyFile, err := homedir.Expand(c.SSH.KeyFile)
	if err != nil {
		return domain.ConnectionSpec{}, fmt.Errorf("expand key_file: %w", err)
	}
	knownHosts, err := homedir.Expand(c.SSH.KnownHosts)
	if err != nil {
		return domain.ConnectionSpec{}, fmt.Errorf("expand known_hosts: %w", err)
	}

	return domain.ConnectionSpec{
		Host:           c.SSH.Host,
		Port:           c.SSH.Port,
		User:           c.SSH.User,
		KeyFile:        keyFile,
		Passphrase:     c.SSH.Passphrase,
		KnownHostsFile: knownHosts,
		Timeout:        time.Duration(c.SSH.Timeout),
	}, nil
}

// Summary returns a one-line description for debug logging
func (c *Config) Summary() string {
	return fmt.Sprintf("target=%s@%s:%d transport=%s key=%s", c.SSH.User, c.SSH.Host, c.SSH.Port, c.SSH.Transport, c.SSH.KeyFile)
}
