package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/hmacsvc/internal/codec"
	"github.com/mattjoyce/hmacsvc/internal/validate"
)

// errMalformedBody marks a request body that is not a JSON object.
var errMalformedBody = errors.New("malformed request body")

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

// handleSign handles POST /sign.
func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	msg := stringField(req.Msg)
	if err := validate.Message(msg, s.config.MaxMsgSizeBytes); err != nil {
		s.fail(w, r, err)
		return
	}

	signature := codec.Encode(s.signer.Sign(*msg))
	s.auditor.RecordSign(r.Context(), len(*msg))
	respondJSON(w, http.StatusOK, SignResponse{Signature: signature})
}

// handleVerify handles POST /verify.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	msg := stringField(req.Msg)
	if err := validate.Message(msg, s.config.MaxMsgSizeBytes); err != nil {
		s.fail(w, r, err)
		return
	}

	sigText := stringField(req.Signature)
	if sigText == nil {
		s.fail(w, r, fmt.Errorf("%w: signature missing or not a string", codec.ErrCodec))
		return
	}
	sig, err := codec.Decode(*sigText)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate.Size(len(sig), s.config.MaxMsgSizeBytes); err != nil {
		s.fail(w, r, err)
		return
	}

	ok := s.signer.Verify(*msg, sig)
	s.auditor.RecordVerify(r.Context(), len(*msg), ok)
	respondJSON(w, http.StatusOK, VerifyResponse{OK: ok})
}

// maxBodyBytes caps the request body. JSON escaping can inflate a byte to
// six characters, and the signature text is roughly 4/3 of its decoded size.
func (s *Server) maxBodyBytes() int64 {
	return int64(s.config.MaxMsgSizeBytes)*16 + 4096
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes())
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body over %d bytes", validate.ErrPayloadTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// stringField returns the string value of a raw JSON field, or nil when the
// field is missing, null or not a string.
func stringField(raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// fail maps a request error to its status and detail. Only the detail is
// logged; message and signature contents never are.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	s.logger.Debug("request rejected",
		"path", r.URL.Path,
		"status", status,
		"detail", detail,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondJSON(w, status, ErrorResponse{Detail: detail})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, validate.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, DetailPayloadTooLarge
	case errors.Is(err, codec.ErrCodec):
		return http.StatusBadRequest, DetailInvalidSignatureFormat
	default:
		// validate.ErrInvalidMessage and errMalformedBody.
		return http.StatusBadRequest, DetailInvalidMsg
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
