package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSecretFromEnv is returned by RewriteSecret when the secret is an
// environment reference; the value has to be rotated where it is defined.
var ErrSecretFromEnv = errors.New("secret is set from an environment variable")

// RewriteSecret replaces the secret in the config file at path, keeping the
// other keys. YAML files are edited in place so comments and ordering
// survive; JSON files are rewritten in canonical key order.
func RewriteSecret(path, secret string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var out []byte
	if strings.EqualFold(filepath.Ext(path), ".json") {
		out, err = rewriteJSON(data, secret)
	} else {
		out, err = rewriteYAML(data, secret)
	}
	if err != nil {
		return err
	}

	return writeFileAtomic(path, out, info.Mode().Perm())
}

func rewriteYAML(data []byte, secret string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping")
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "secret" {
			continue
		}
		value := root.Content[i+1]
		if envVarPattern.MatchString(value.Value) {
			return nil, ErrSecretFromEnv
		}
		value.Kind = yaml.ScalarNode
		value.Tag = "!!str"
		value.Value = secret
		value.Style = yaml.DoubleQuotedStyle

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, missingKey("secret")
}

// jsonConfig fixes the key order of rewritten JSON files.
type jsonConfig struct {
	HMACAlg         string       `json:"hmac_alg"`
	Secret          string       `json:"secret"`
	LogLevel        string       `json:"log_level"`
	Listen          string       `json:"listen"`
	MaxMsgSizeBytes int          `json:"max_msg_size_bytes"`
	Audit           *AuditConfig `json:"audit,omitempty"`
}

func rewriteJSON(data []byte, secret string) ([]byte, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if raw.Secret == nil {
		return nil, missingKey("secret")
	}
	if envVarPattern.MatchString(*raw.Secret) {
		return nil, ErrSecretFromEnv
	}

	out := jsonConfig{
		HMACAlg:  deref(raw.HMACAlg),
		Secret:   secret,
		LogLevel: deref(raw.LogLevel),
		Listen:   deref(raw.Listen),
	}
	if raw.MaxMsgSizeBytes != nil {
		out.MaxMsgSizeBytes = *raw.MaxMsgSizeBytes
	}
	if raw.Audit.Path != "" {
		out.Audit = &raw.Audit
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return append(b, '\n'), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
