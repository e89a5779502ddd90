package config

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newSecret = "bmV3LXNlY3JldC1ieXRlcw"

func TestRewriteSecretJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.json", validJSON)

	require.NoError(t, RewriteSecret(path, newSecret))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, newSecret, got["secret"])
	assert.Equal(t, "SHA256", got["hmac_alg"])
	assert.Equal(t, "info", got["log_level"])
	assert.Equal(t, "0.0.0.0:8080", got["listen"])
	assert.EqualValues(t, 1024, got["max_msg_size_bytes"])
	assert.NotContains(t, got, "audit")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-secret-bytes"), cfg.SecretBytes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRewriteSecretYAMLKeepsComments(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", validYAML)

	require.NoError(t, RewriteSecret(path, newSecret))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# hmacsvc config")
	assert.Contains(t, string(data), newSecret)
	assert.NotContains(t, string(data), "c2VjdXJlLXRlc3Qtc2VjcmV0")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-secret-bytes"), cfg.SecretBytes)
	assert.Equal(t, "./data/audit.db", cfg.Audit.Path)
}

func TestRewriteSecretRefusesEnvReference(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			content := validYAML
			if strings.HasSuffix(name, ".json") {
				content = validJSON
			}
			content = strings.Replace(content, "c2VjdXJlLXRlc3Qtc2VjcmV0", "${HMAC_SECRET}", 1)
			path := writeConfig(t, t.TempDir(), name, content)

			err := RewriteSecret(path, newSecret)
			assert.ErrorIs(t, err, ErrSecretFromEnv)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		})
	}
}

func TestRewriteSecretMissingKey(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "hmac_alg: SHA256\n")
	err := RewriteSecret(path, newSecret)
	assert.ErrorIs(t, err, ErrConfig)
}
