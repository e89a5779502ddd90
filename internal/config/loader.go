package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/hmacsvc/internal/codec"
	"github.com/mattjoyce/hmacsvc/internal/signer"
)

// ErrConfig wraps every configuration problem reported by Load.
var ErrConfig = errors.New("invalid configuration")

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

const (
	minPort = 1
	maxPort = 65535
)

// Load reads, interpolates and validates the configuration at configPath.
// A directory is accepted if it contains config.yaml or config.json.
// When a .checksums manifest sits next to the file, the file must match it.
func Load(configPath string) (*Config, error) {
	cfg, err := LoadUnverified(configPath)
	if err != nil {
		return nil, err
	}

	if err := VerifyChecksum(cfg.SourcePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return cfg, nil
}

// LoadUnverified is Load without the checksum check. It is used by
// 'config lock', which exists to re-authorize an edited file.
func LoadUnverified(configPath string) (*Config, error) {
	path, err := resolveFile(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = path
	return cfg, nil
}

// Parse validates raw YAML (or JSON) configuration bytes.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrConfig, err)
	}

	switch {
	case raw.HMACAlg == nil:
		return nil, missingKey("hmac_alg")
	case raw.Secret == nil:
		return nil, missingKey("secret")
	case raw.LogLevel == nil:
		return nil, missingKey("log_level")
	case raw.Listen == nil:
		return nil, missingKey("listen")
	case raw.MaxMsgSizeBytes == nil:
		return nil, missingKey("max_msg_size_bytes")
	}

	cfg := &Config{
		HMACAlg:         strings.ToUpper(strings.TrimSpace(*raw.HMACAlg)),
		Secret:          *raw.Secret,
		LogLevel:        strings.ToLower(strings.TrimSpace(*raw.LogLevel)),
		Listen:          *raw.Listen,
		MaxMsgSizeBytes: *raw.MaxMsgSizeBytes,
		Audit:           raw.Audit,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: missing required key %q", ErrConfig, key)
}

// validate checks cfg and fills in the derived fields.
func validate(cfg *Config) error {
	if cfg.HMACAlg != signer.AlgorithmSHA256 {
		return fmt.Errorf("%w: hmac_alg must be %s (got %q)", ErrConfig, signer.AlgorithmSHA256, cfg.HMACAlg)
	}

	if m := envVarPattern.FindStringSubmatch(cfg.Secret); m != nil {
		return fmt.Errorf("%w: secret: environment variable ${%s} is not set", ErrConfig, m[1])
	}
	secret, err := DecodeSecret(cfg.Secret)
	if err != nil {
		return err
	}
	cfg.SecretBytes = secret

	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("%w: log_level must be one of: debug, info, warn, error (got %q)", ErrConfig, cfg.LogLevel)
	}

	host, port, err := parseListen(cfg.Listen)
	if err != nil {
		return err
	}
	cfg.ListenHost = host
	cfg.ListenPort = port

	if cfg.MaxMsgSizeBytes <= 0 {
		return fmt.Errorf("%w: max_msg_size_bytes must be a positive integer", ErrConfig)
	}

	return nil
}

// DecodeSecret decodes a base64url secret. Trailing padding is tolerated.
func DecodeSecret(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return nil, fmt.Errorf("%w: secret must be a non-empty string", ErrConfig)
	}
	secret, err := codec.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: secret must be base64url encoded", ErrConfig)
	}
	return secret, nil
}

func parseListen(listen string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return "", 0, fmt.Errorf("%w: listen must be in format host:port (got %q)", ErrConfig, listen)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("%w: listen port must be an integer (got %q)", ErrConfig, portStr)
	}
	if port < minPort || port > maxPort {
		return "", 0, fmt.Errorf("%w: listen port must be in %d-%d range (got %d)", ErrConfig, minPort, maxPort, port)
	}
	return host, port, nil
}

// resolveFile turns a file or directory argument into a config file path.
func resolveFile(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("%w: resolve config path %q: %v", ErrConfig, configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: config file not found: %s", ErrConfig, absPath)
	}
	if !info.IsDir() {
		return absPath, nil
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(absPath, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: directory provided but no %s found in %s", ErrConfig, strings.Join(configFileNames, " or "), absPath)
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Unset variables are left in place so validation can report them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}
