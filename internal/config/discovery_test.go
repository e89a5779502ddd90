package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverExplicitWins(t *testing.T) {
	t.Setenv(EnvConfigPath, "/from/env.json")
	got, err := Discover("/explicit.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/explicit.yaml", got)
}

func TestDiscoverEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/from/env.json")
	got, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, "/from/env.json", got)
}

func TestDiscoverWorkingDirectory(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err := Discover("")
	assert.ErrorIs(t, err, ErrConfig)

	require.NoError(t, os.WriteFile("config.json", []byte(validJSON), 0o600))
	got, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, "config.json", got)

	require.NoError(t, os.WriteFile("config.yaml", []byte(validYAML), 0o600))
	got, err = Discover("")
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", got)
}
