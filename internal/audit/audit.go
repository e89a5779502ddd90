// Package audit records one entry per sign/verify request. Entries carry the
// message length and, for verify, the boolean outcome. Message text,
// signatures and key material are never recorded.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Op names the audited operation.
type Op string

const (
	OpSign   Op = "sign"
	OpVerify Op = "verify"
)

// Record is a single audit entry.
type Record struct {
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	MsgLen    int       `json:"msg_len"`
	OK        *bool     `json:"ok,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink persists records. *Store implements it.
type Sink interface {
	Insert(ctx context.Context, rec Record) error
}

// Recorder writes audit records to the structured log and, when configured,
// to a persistent Sink. A failing sink never fails the request.
type Recorder struct {
	logger *slog.Logger
	sink   Sink
	now    func() time.Time
}

// NewRecorder returns a Recorder. sink may be nil.
func NewRecorder(logger *slog.Logger, sink Sink) *Recorder {
	return &Recorder{logger: logger, sink: sink, now: time.Now}
}

// RecordSign records a sign request for a message of msgLen bytes.
func (r *Recorder) RecordSign(ctx context.Context, msgLen int) {
	rec := r.newRecord(ctx, OpSign, msgLen)
	r.logger.InfoContext(ctx, "sign request",
		"audit_id", rec.ID,
		"msg_len", msgLen,
		"request_id", rec.RequestID,
	)
	r.persist(ctx, rec)
}

// RecordVerify records a verify request and its outcome.
func (r *Recorder) RecordVerify(ctx context.Context, msgLen int, ok bool) {
	rec := r.newRecord(ctx, OpVerify, msgLen)
	rec.OK = &ok
	r.logger.InfoContext(ctx, "verify request",
		"audit_id", rec.ID,
		"msg_len", msgLen,
		"ok", ok,
		"request_id", rec.RequestID,
	)
	r.persist(ctx, rec)
}

func (r *Recorder) newRecord(ctx context.Context, op Op, msgLen int) Record {
	return Record{
		ID:        uuid.NewString(),
		Op:        op,
		MsgLen:    msgLen,
		RequestID: middleware.GetReqID(ctx),
		CreatedAt: r.now().UTC(),
	}
}

func (r *Recorder) persist(ctx context.Context, rec Record) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Insert(ctx, rec); err != nil {
		r.logger.Warn("audit sink write failed", "audit_id", rec.ID, "error", err)
	}
}
