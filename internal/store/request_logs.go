// ABOUTME: Request log storage operations.
// ABOUTME: Handles inserting and querying HTTP request logs for the dashboard and log viewer.

package store

import (
	"context"
	"strings"
	"time"
)

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID           int64
	Timestamp    time.Time
	App          string
	Resource     string
	Method       string
	Path         string
	StatusCode   int
	DurationMs   int
	UserID       string
	IPAddress    string
	UserAgent    string
	Error        string
	RequestBody  string
	ResponseBody string
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(ctx context.Context, log *RequestLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_logs (app, resource, method, path, status_code, duration_ms, user_id, ip_address, user_agent, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.App, log.Resource, log.Method, log.Path, log.StatusCode, log.DurationMs, log.UserID, log.IPAddress, log.UserAgent, log.Error, log.RequestBody, log.ResponseBody)
	return err
}

// RequestLogQuery represents filters for request logs
type RequestLogQuery struct {
	Limit      int
	Offset     int
	App        string
	Method     string
	PathPrefix string
	StatusCode int
	UserID     string
}

// RequestLogStats represents aggregate statistics
type RequestLogStats struct {
	TotalRequests   int
	TodayRequests   int
	ErrorRequests   int
	AvgDurationMs   int
	UniqueEndpoints int
	UniqueUsers     int
}

const requestLogColumns = `id, timestamp, COALESCE(app, ''), COALESCE(resource, ''), method, path,
	COALESCE(status_code, 0), COALESCE(duration_ms, 0), COALESCE(user_id, ''), COALESCE(ip_address, ''),
	COALESCE(user_agent, ''), COALESCE(error, ''), COALESCE(request_body, ''), COALESCE(response_body, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequestLog(row rowScanner) (*RequestLog, error) {
	log := &RequestLog{}
	err := row.Scan(&log.ID, &log.Timestamp, &log.App, &log.Resource, &log.Method, &log.Path,
		&log.StatusCode, &log.DurationMs, &log.UserID, &log.IPAddress, &log.UserAgent, &log.Error,
		&log.RequestBody, &log.ResponseBody)
	return log, err
}

// likeEscaper escapes the LIKE wildcards. The backslash comes first so it is
// not escaped twice.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// pathPrefixPattern turns a console path such as "/cms/page_draft" into a
// LIKE pattern that matches it literally as a prefix.
func pathPrefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// GetRequestLogs retrieves request logs with filtering
func (s *Store) GetRequestLogs(ctx context.Context, q *RequestLogQuery) ([]*RequestLog, error) {
	query := "SELECT " + requestLogColumns + " FROM request_logs WHERE 1=1"
	args := []any{}

	if q.App != "" {
		query += " AND app = ?"
		args = append(args, q.App)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += ` AND path LIKE ? ESCAPE '\'`
		args = append(args, pathPrefixPattern(q.PathPrefix))
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}
	if q.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, q.UserID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*RequestLog
	for rows.Next() {
		log, err := scanRequestLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// GetRequestLogStats returns aggregate statistics
func (s *Store) GetRequestLogStats(ctx context.Context) (*RequestLogStats, error) {
	stats := &RequestLogStats{}
	today := time.Now().UTC().Format("2006-01-02")

	queries := []struct {
		sql  string
		args []any
		dest *int
	}{
		{"SELECT COUNT(*) FROM request_logs", nil, &stats.TotalRequests},
		{"SELECT COUNT(*) FROM request_logs WHERE date(timestamp) = ?", []any{today}, &stats.TodayRequests},
		{"SELECT COUNT(*) FROM request_logs WHERE status_code >= 400", nil, &stats.ErrorRequests},
		{"SELECT CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) FROM request_logs", nil, &stats.AvgDurationMs},
		{"SELECT COUNT(DISTINCT path) FROM request_logs", nil, &stats.UniqueEndpoints},
		{"SELECT COUNT(DISTINCT user_id) FROM request_logs WHERE user_id != ''", nil, &stats.UniqueUsers},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql, q.args...).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// EndpointStat is the request count and mean latency for one path.
type EndpointStat struct {
	Path  string
	Count int
	AvgMs int
}

// GetTopEndpoints returns the most frequently requested endpoints
func (s *Store) GetTopEndpoints(ctx context.Context, limit int) ([]EndpointStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM request_logs
		GROUP BY path
		ORDER BY count DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []EndpointStat
	for rows.Next() {
		var e EndpointStat
		var avgMs float64
		if err := rows.Scan(&e.Path, &e.Count, &avgMs); err != nil {
			return nil, err
		}
		e.AvgMs = int(avgMs)
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// GetAppRequestCount returns the number of requests for an app since a given time
func (s *Store) GetAppRequestCount(ctx context.Context, app string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM request_logs
		WHERE app = ? AND timestamp >= ?
	`, app, since).Scan(&count)
	return count, err
}

// GetAppErrorRate returns the error rate percentage for an app since a given time
func (s *Store) GetAppErrorRate(ctx context.Context, app string, since time.Time) (float64, error) {
	var total, errored int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0)
		FROM request_logs
		WHERE app = ? AND timestamp >= ?
	`, app, since).Scan(&total, &errored)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(errored) / float64(total) * 100.0, nil
}

// GetRecentRequests returns the most recent requests for an app
func (s *Store) GetRecentRequests(ctx context.Context, app string, limit int) ([]*RequestLog, error) {
	return s.GetRequestLogs(ctx, &RequestLogQuery{App: app, Limit: limit})
}
