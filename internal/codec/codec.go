// Package codec converts HMAC signatures between raw bytes and their wire
// form: URL-safe base64 (RFC 4648 section 5) with the padding stripped.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrCodec is returned for any signature text that cannot be decoded.
var ErrCodec = errors.New("invalid signature encoding")

// Encode returns the unpadded base64url form of raw.
func Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses unpadded base64url text.
//
// Only the characters A-Z, a-z, 0-9, '-' and '_' are accepted; padding is
// restored internally before decoding. Text that decodes to zero bytes is
// rejected.
func Decode(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrCodec)
	}
	for i := 0; i < len(text); i++ {
		if !isURLAlphabet(text[i]) {
			return nil, fmt.Errorf("%w: character outside base64url alphabet", ErrCodec)
		}
	}

	padded := text + strings.Repeat("=", (4-len(text)%4)%4)
	raw, err := base64.URLEncoding.DecodeString(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: decoded to empty bytes", ErrCodec)
	}
	return raw, nil
}

func isURLAlphabet(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
