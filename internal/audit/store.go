package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists audit records in the audit_log table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database (see storage.OpenSQLite).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert stores rec.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	var ok sql.NullInt64
	if rec.OK != nil {
		ok.Valid = true
		if *rec.OK {
			ok.Int64 = 1
		}
	}
	var requestID sql.NullString
	if rec.RequestID != "" {
		requestID = sql.NullString{String: rec.RequestID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_log(id, op, msg_len, ok, request_id, created_at)
VALUES(?, ?, ?, ?, ?, ?);
`, rec.ID, string(rec.Op), rec.MsgLen, ok, requestID, rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, op, msg_len, ok, request_id, created_at
FROM audit_log
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			op        string
			ok        sql.NullInt64
			requestID sql.NullString
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &op, &rec.MsgLen, &ok, &requestID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Op = Op(op)
		if ok.Valid {
			v := ok.Int64 == 1
			rec.OK = &v
		}
		rec.RequestID = requestID.String
		if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return out, nil
}
