package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
)

// WriteRequestLog inserts a request log entry. The api id is not a foreign
// key: logs outlive the API they describe.
func (s *Store) WriteRequestLog(ctx context.Context, e *mock.RequestLog) error {
	var apiID sql.NullString
	if e.APIID != nil {
		apiID = sql.NullString{String: *e.APIID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_logs (id, api_id, timestamp, request_meta, request_body, response_sent)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, apiID, formatTime(e.Timestamp), jsonText(e.RequestMeta), e.RequestBody, jsonText(e.ResponseSent))
	if err != nil {
		return fmt.Errorf("inserting request log: %w", mapErr(err))
	}
	return nil
}

// ListRequestLogs returns entries newest first.
func (s *Store) ListRequestLogs(ctx context.Context, f store.RequestLogFilter) ([]*mock.RequestLog, error) {
	query := `SELECT id, api_id, timestamp, request_meta, request_body, response_sent FROM request_logs`
	var args []any
	if f.APIID != "" {
		query += ` WHERE api_id = ?`
		args = append(args, f.APIID)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, f.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing request logs: %w", err)
	}
	defer rows.Close()

	var out []*mock.RequestLog
	for rows.Next() {
		var (
			e          mock.RequestLog
			apiID      sql.NullString
			ts         string
			meta, resp string
		)
		if err := rows.Scan(&e.ID, &apiID, &ts, &meta, &e.RequestBody, &resp); err != nil {
			return nil, err
		}
		if apiID.Valid {
			v := apiID.String
			e.APIID = &v
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("request log %s timestamp: %w", e.ID, err)
		}
		e.RequestMeta = []byte(meta)
		e.ResponseSent = []byte(resp)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
