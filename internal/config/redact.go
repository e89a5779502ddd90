package config

import "fmt"

// Redacted returns a map suitable for logging or printing with the secret
// replaced by its length.
func (c Config) Redacted() map[string]any {
	redacted := map[string]any{
		"hmac_alg":           c.HMACAlg,
		"log_level":          c.LogLevel,
		"listen":             c.Listen,
		"max_msg_size_bytes": c.MaxMsgSizeBytes,
	}
	if c.Audit.Path != "" {
		redacted["audit"] = map[string]any{"path": c.Audit.Path}
	}
	if len(c.SecretBytes) > 0 {
		redacted["secret"] = fmt.Sprintf("*** (%d bytes)", len(c.SecretBytes))
	}
	return redacted
}
