package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "SMARTOS_INVENTORY_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "smartos-inventory.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "smartos-inventory"
)

// AnsibleConfigDir holds the system-wide inventory plugin configs
var AnsibleConfigDir = "/etc/ansible"

// FindConfigPath returns the first existing config file, or "" when there
// is none. An explicit $SMARTOS_INVENTORY_CONFIG wins, then the working
// directory, the per-user config dirs, and last the Ansible system dir.
func FindConfigPath() string {
	for _, path := range configCandidates() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

func configCandidates() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, ConfigFileName)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths,
		filepath.Join(AnsibleConfigDir, "smartos.yaml"),
		filepath.Join(AnsibleConfigDir, "smartos.ini"),
	)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
