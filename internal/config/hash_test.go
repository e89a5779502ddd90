package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBlake3HashDeterministic(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.json", validJSON)

	h1, err := ComputeBlake3Hash(path)
	require.NoError(t, err)
	h2, err := ComputeBlake3Hash(path)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NoError(t, VerifyFileHash(path, h1))
	assert.Error(t, VerifyFileHash(path, "00"))
}

func TestLockWritesManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", validJSON)

	hash, err := Lock(path)
	require.NoError(t, err)

	manifest, err := LoadChecksums(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, manifest.Version)
	assert.Equal(t, hash, manifest.Hashes["config.json"])

	info, err := os.Stat(filepath.Join(dir, ChecksumFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.True(t, HasChecksums(path))
}

func TestLoadVerifiesChecksums(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", validJSON)

	_, err := Lock(path)
	require.NoError(t, err)

	_, err = Load(path)
	require.NoError(t, err)

	// Tamper with the file after locking.
	require.NoError(t, os.WriteFile(path, []byte(validJSON+"\n"), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestLoadUnverifiedIgnoresStaleChecksums(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.json", validJSON)

	_, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(validJSON+"\n"), 0o600))

	cfg, err := LoadUnverified(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.SourcePath)

	// Re-locking makes the edited file loadable again.
	_, err = Lock(cfg.SourcePath)
	require.NoError(t, err)
	_, err = Load(path)
	assert.NoError(t, err)
}

func TestLoadWithoutManifestSkipsVerification(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.json", validJSON)
	assert.False(t, HasChecksums(path))
	assert.NoError(t, VerifyChecksum(path))
}

func TestVerifyChecksumFileNotInManifest(t *testing.T) {
	dir := t.TempDir()
	locked := writeConfig(t, dir, "config.json", validJSON)
	other := writeConfig(t, dir, "config.yaml", validYAML)

	_, err := Lock(locked)
	require.NoError(t, err)

	err = VerifyChecksum(other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no hash")
}

func TestLoadChecksumsRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChecksumFile), []byte("version: 2\nhashes: {}\n"), 0o600))

	_, err := LoadChecksums(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported checksums version")
}

func TestLoadChecksumsMissing(t *testing.T) {
	_, err := LoadChecksums(t.TempDir())
	assert.ErrorIs(t, err, ErrNoChecksums)
}
