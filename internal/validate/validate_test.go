package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     *string
		limit   int
		wantErr error
	}{
		{name: "ok", msg: strPtr("hello"), limit: 32},
		{name: "exactly at limit", msg: strPtr(strings.Repeat("a", 32)), limit: 32},
		{name: "missing", msg: nil, limit: 32, wantErr: ErrInvalidMessage},
		{name: "empty", msg: strPtr(""), limit: 32, wantErr: ErrInvalidMessage},
		{name: "over limit", msg: strPtr(strings.Repeat("a", 64)), limit: 32, wantErr: ErrPayloadTooLarge},
		// 10 runes, 19 bytes in UTF-8.
		{name: "limit counts bytes not runes", msg: strPtr("привет мир"), limit: 11, wantErr: ErrPayloadTooLarge},
		{name: "multibyte within limit", msg: strPtr("é"), limit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Message(tt.msg, tt.limit)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSize(t *testing.T) {
	assert.NoError(t, Size(32, 32))
	assert.ErrorIs(t, Size(0, 32), ErrInvalidMessage)
	assert.ErrorIs(t, Size(33, 32), ErrPayloadTooLarge)
}
