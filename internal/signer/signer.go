// Package signer computes and verifies HMAC-SHA256 message signatures with a
// single shared secret.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// AlgorithmSHA256 is the only supported HMAC hash.
const AlgorithmSHA256 = "SHA256"

// Size is the length in bytes of every signature produced by Sign.
const Size = sha256.Size

var (
	// ErrUnsupportedAlgorithm is returned by New for any algorithm other than SHA256.
	ErrUnsupportedAlgorithm = errors.New("unsupported hmac algorithm")
	// ErrEmptySecret is returned by New when no secret is configured.
	ErrEmptySecret = errors.New("hmac secret is empty")
)

// Config holds what a Signer needs. Secret is copied by New.
type Config struct {
	Algorithm string
	Secret    []byte
}

// Signer is safe for concurrent use. Its secret never changes after New.
type Signer struct {
	secret []byte
}

// New validates cfg and returns a Signer.
func New(cfg Config) (*Signer, error) {
	if !strings.EqualFold(cfg.Algorithm, AlgorithmSHA256) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Signer{secret: secret}, nil
}

// Sign returns HMAC-SHA256(secret, msg). The result is always Size bytes.
func (s *Signer) Sign(msg string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}

// Verify reports whether signature is the signature of msg.
// An empty or nil signature is never valid.
func (s *Signer) Verify(msg string, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}
	expected := s.Sign(msg)
	// ConstantTimeCompare returns 0 immediately on length mismatch; length is not secret.
	return subtle.ConstantTimeCompare(expected, signature) == 1
}
