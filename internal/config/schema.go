package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	SSH SSHConfig `yaml:"ssh"`
}

// SSHConfig describes how to reach the SmartOS global zone
type SSHConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	User       string   `yaml:"user"`
	KeyFile    string   `yaml:"key_file"`
	Passphrase string   `yaml:"passphrase,omitempty"`
	KnownHosts string   `yaml:"known_hosts"`
	Timeout    Duration `yaml:"timeout,omitempty"`
	// Executable is the ssh client used by the exec transport
	Executable string `yaml:"executable,omitempty"`
	// Transport is auto, ssh or exec
	Transport string `yaml:"transport,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
