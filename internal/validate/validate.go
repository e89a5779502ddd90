// Package validate holds the size and emptiness rules applied to requests
// before any cryptographic work is done.
package validate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMessage  = errors.New("invalid message")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Message checks a message as received from a client. A nil msg means the
// field was missing, null or not a string.
func Message(msg *string, limit int) error {
	if msg == nil {
		return fmt.Errorf("%w: missing", ErrInvalidMessage)
	}
	return Size(len(*msg), limit)
}

// Size checks a byte length against limit. The same limit bounds messages and
// decoded signatures.
func Size(n, limit int) error {
	if n == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidMessage)
	}
	if n > limit {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, n, limit)
	}
	return nil
}
