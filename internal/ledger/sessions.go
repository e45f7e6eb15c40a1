package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Session is one recorded download run.
type Session struct {
	ID         int64
	BookID     string
	Title      string
	Encrypted  bool
	PageCount  int
	OK         int
	Skipped    int
	Failed     int
	PDFPath    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Finished reports whether the session ran to completion.
func (s Session) Finished() bool { return !s.FinishedAt.IsZero() }

// PageRecord is one page outcome within a session.
type PageRecord struct {
	Index    int
	Filename string
	Status   string
	Error    string
}

// BeginSession records the start of a download run and returns its id.
func (s *Store) BeginSession(ctx context.Context, bookID, title string, encrypted bool, pageCount int) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO sessions (book_id, title, encrypted, page_count, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		bookID, title, boolInt(encrypted), pageCount, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordPage stores one page outcome under a session.
func (s *Store) RecordPage(ctx context.Context, sessionID int64, index int, filename, status, errText string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO pages (session_id, page_index, filename, status, error)
         VALUES (?, ?, ?, ?, ?)`,
		sessionID, index, nullableString(filename), status, nullableString(errText))
	if err != nil {
		return fmt.Errorf("insert page record: %w", err)
	}
	return nil
}

// FinishSession records the run's final counts and output path.
func (s *Store) FinishSession(ctx context.Context, sessionID int64, ok, skipped, failed int, pdfPath string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE sessions
         SET ok_count = ?, skipped_count = ?, failed_count = ?, pdf_path = ?, finished_at = ?
         WHERE id = ?`,
		ok, skipped, failed, nullableString(pdfPath),
		time.Now().UTC().Format(time.RFC3339Nano), sessionID)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// RecentSessions lists finished and unfinished sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, title, encrypted, page_count, ok_count, skipped_count,
                failed_count, pdf_path, started_at, finished_at
         FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Pages returns the per-page outcomes for one session, ordered by index.
func (s *Store) Pages(ctx context.Context, sessionID int64) ([]PageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_index, filename, status, error
         FROM pages WHERE session_id = ? ORDER BY page_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var records []PageRecord
	for rows.Next() {
		var (
			record   PageRecord
			filename sql.NullString
			errText  sql.NullString
		)
		if err := rows.Scan(&record.Index, &filename, &record.Status, &errText); err != nil {
			return nil, fmt.Errorf("scan page record: %w", err)
		}
		record.Filename = filename.String
		record.Error = errText.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return records, nil
}

func scanSession(rows *sql.Rows) (Session, error) {
	var (
		session    Session
		encrypted  int
		pdfPath    sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	err := rows.Scan(&session.ID, &session.BookID, &session.Title, &encrypted,
		&session.PageCount, &session.OK, &session.Skipped, &session.Failed,
		&pdfPath, &startedAt, &finishedAt)
	if err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.Encrypted = encrypted != 0
	session.PDFPath = pdfPath.String
	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		session.StartedAt = ts
	}
	if finishedAt.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			session.FinishedAt = ts
		}
	}
	return session, nil
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
