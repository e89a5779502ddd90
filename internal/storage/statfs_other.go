//go:build !darwin && !linux

package storage

// filesystemType cannot tell filesystems apart here, so the check passes.
func filesystemType(string) (string, error) {
	return "unknown", nil
}
