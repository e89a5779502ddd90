package config

import (
	"fmt"
	"os"
)

// EnvConfigPath names the environment variable consulted when no explicit
// config path is given.
const EnvConfigPath = "CONFIG_PATH"

var configFileNames = []string{"config.yaml", "config.json"}

// Discover finds the config file to use.
// Priority order: explicit path, $CONFIG_PATH, ./config.yaml, ./config.json.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no config found (checked: $%s, ./config.yaml, ./config.json)", ErrConfig, EnvConfigPath)
}
