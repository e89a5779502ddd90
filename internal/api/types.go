package api

import "encoding/json"

// SignRequest is the JSON body for POST /sign.
// Msg is kept raw so null, missing and non-string values can be told apart
// from a JSON decoding failure.
type SignRequest struct {
	Msg json.RawMessage `json:"msg"`
}

// SignResponse is returned by POST /sign.
type SignResponse struct {
	Signature string `json:"signature"`
}

// VerifyRequest is the JSON body for POST /verify.
type VerifyRequest struct {
	Msg       json.RawMessage `json:"msg"`
	Signature json.RawMessage `json:"signature"`
}

// VerifyResponse is returned by POST /verify. A mismatch is OK=false, not an error.
type VerifyResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Error details returned to clients.
const (
	DetailInvalidMsg             = "invalid_msg"
	DetailPayloadTooLarge        = "payload_too_large"
	DetailInvalidSignatureFormat = "invalid_signature_format"
)
