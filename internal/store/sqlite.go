package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/proxybin/proxybin/internal/bodycodec"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	// One connection: sqlite serializes writers anyway, and a pool of
	// :memory: connections would each see a different database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS request_history (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		owner              TEXT,
		method             TEXT NOT NULL,
		url                TEXT NOT NULL,
		status             INTEGER NOT NULL,
		request_headers    TEXT,
		response_headers   TEXT,
		request_body       TEXT,
		request_body_type  TEXT,
		response_body      TEXT,
		response_body_type TEXT,
		created_at         TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_request_history_owner ON request_history(owner);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec *Record) error {
	reqHeaders, err := marshalHeaders(rec.RequestHeaders)
	if err != nil {
		return err
	}
	respHeaders, err := marshalHeaders(rec.ResponseHeaders)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO request_history
			(owner, method, url, status, request_headers, response_headers,
			 request_body, request_body_type, response_body, response_body_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Owner, rec.Method, rec.URL, rec.Status, reqHeaders, respHeaders,
		rec.RequestBody, string(rec.RequestBodyType),
		rec.ResponseBody, string(rec.ResponseBodyType),
		now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = now
	return nil
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, owner string, page Page) ([]*Record, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM request_history WHERE owner = ?", owner).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, method, url, status, request_headers, response_headers,
		       request_body, request_body_type, response_body, response_body_type, created_at
		FROM request_history
		WHERE owner = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, owner, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		rec                     Record
		reqHeaders, respHeaders sql.NullString
		reqType, respType       string
		ts                      string
	)
	err := rows.Scan(&rec.ID, &rec.Owner, &rec.Method, &rec.URL, &rec.Status,
		&reqHeaders, &respHeaders,
		&rec.RequestBody, &reqType, &rec.ResponseBody, &respType, &ts)
	if err != nil {
		return nil, fmt.Errorf("scanning history row: %w", err)
	}

	if rec.RequestHeaders, err = unmarshalHeaders(reqHeaders); err != nil {
		return nil, err
	}
	if rec.ResponseHeaders, err = unmarshalHeaders(respHeaders); err != nil {
		return nil, err
	}
	rec.RequestBodyType = bodycodec.BodyType(reqType)
	rec.ResponseBodyType = bodycodec.BodyType(respType)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	return &rec, nil
}

func marshalHeaders(h map[string]string) (sql.NullString, error) {
	if len(h) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding headers: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalHeaders(s sql.NullString) (map[string]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var h map[string]string
	if err := json.Unmarshal([]byte(s.String), &h); err != nil {
		return nil, fmt.Errorf("decoding headers: %w", err)
	}
	return h, nil
}
