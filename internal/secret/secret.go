// Package secret generates HMAC secrets in the config file encoding.
package secret

import (
	"crypto/rand"
	"fmt"

	"github.com/mattjoyce/hmacsvc/internal/codec"
)

// DefaultSize is the secret length in bytes, matching the SHA-256 block
// output size.
const DefaultSize = 32

// Generate returns n random bytes encoded as unpadded base64url.
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return codec.Encode(buf), nil
}
