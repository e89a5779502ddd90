package codec

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("\x01\x02test-bytes"),
		{0x00},
		{0xff, 0xfe},
		{0xfb, 0xff, 0xbf},
		bytes.Repeat([]byte{0xab}, 32),
	}
	for n := 1; n <= 65; n++ {
		b := make([]byte, n)
		if _, err := rand.Read(b); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		inputs = append(inputs, b)
	}

	for _, raw := range inputs {
		encoded := Encode(raw)
		if strings.Contains(encoded, "=") {
			t.Fatalf("Encode(%x) = %q, contains padding", raw, encoded)
		}
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", encoded, err)
		}
		if !bytes.Equal(decoded, raw) {
			t.Fatalf("round trip mismatch: got %x, want %x", decoded, raw)
		}
	}
}

func TestEncodeUsesURLAlphabet(t *testing.T) {
	// 0xfb 0xff maps to "+/" in the standard alphabet.
	got := Encode([]byte{0xfb, 0xff, 0xbf})
	if got != "-_-_" {
		t.Errorf("Encode() = %q, want %q", got, "-_-_")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "outside alphabet", input: "@@@"},
		{name: "explicit padding", input: "abc="},
		{name: "standard alphabet", input: "abc/+"},
		{name: "whitespace", input: "ab cd"},
		{name: "impossible length", input: "A"},
		{name: "impossible length after block", input: "AAAAA"},
		{name: "non-ascii", input: "abcé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("Decode(%q) = %x, want error", tt.input, got)
			}
			if !errors.Is(err, ErrCodec) {
				t.Errorf("Decode(%q) error = %v, want ErrCodec", tt.input, err)
			}
		})
	}
}

func TestDecodeAcceptsUnpaddedLengths(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{input: "aGk", want: []byte("hi")},
		{input: "aGVsbG8", want: []byte("hello")},
		{input: "AA", want: []byte{0x00}},
		{input: "YWJj", want: []byte("abc")},
	}
	for _, tt := range tests {
		got, err := Decode(tt.input)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", tt.input, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
