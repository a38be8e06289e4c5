// internal/activity/activity.go
//
// Audit trail of student changes made through Student Desk.
//
// Context
// -------
// The registry API owns the student records; this package only remembers
// who did what from this front end.  One row per successful login, register,
// create, update, delete, or export:
//
//	student_activity (id PK, at, actor, action, student_id, detail, ip)
//
// Recording is best effort.  Callers log a failed Record and carry on; the
// user's action already succeeded upstream.
//
// Notes
// -----
//   - MySQL placeholder syntax (?).  The table is created by Migrate.
//   - Nop is used when no database DSN is configured.
package activity

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/requestinfo"
)

// Action names stored in the action column.
const (
	LoggedIn   = "login"
	Registered = "register"
	Created    = "created"
	Updated    = "updated"
	Deleted    = "deleted"
	Exported   = "exported"
)

// Event is one audit row.
type Event struct {
	ID        int64     `db:"id"`
	At        time.Time `db:"at"`
	Actor     string    `db:"actor"`
	Action    string    `db:"action"`
	StudentID int64     `db:"student_id"`
	Detail    string    `db:"detail"`
	IP        string    `db:"ip"`
}

// Recorder persists events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, Event) error          { return nil }
func (Nop) Recent(context.Context, int) ([]Event, error) { return nil, nil }

// Store is the sqlx-backed Recorder.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

const schema = `CREATE TABLE IF NOT EXISTS student_activity (
    id         BIGINT AUTO_INCREMENT PRIMARY KEY,
    at         DATETIME(6)  NOT NULL,
    actor      VARCHAR(255) NOT NULL,
    action     VARCHAR(32)  NOT NULL,
    student_id BIGINT       NOT NULL DEFAULT 0,
    detail     VARCHAR(1024) NOT NULL DEFAULT '',
    ip         VARCHAR(64)  NOT NULL DEFAULT '',
    INDEX idx_student_activity_at (at)
)`

// Migrate creates the table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record inserts e.  A zero At is stamped with the current UTC time.
func (s *Store) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = s.now().UTC()
	}
	if e.Actor == "" {
		e.Actor = "anonymous"
	}
	const q = `INSERT INTO student_activity (at, actor, action, student_id, detail, ip)
               VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, e.At, e.Actor, e.Action, e.StudentID, e.Detail, e.IP)
	return err
}

// Recent returns the newest events first.  limit <= 0 means 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, at, actor, action, student_id, detail, ip
                 FROM student_activity
                ORDER BY at DESC, id DESC
                LIMIT ?`
	events := make([]Event, 0, limit)
	if err := s.db.SelectContext(ctx, &events, q, limit); err != nil {
		return nil, err
	}
	return events, nil
}

// Note records e and logs, rather than returns, a failure.
func Note(ctx context.Context, rec Recorder, e Event) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, e); err != nil {
		logger.FromContext(ctx).Warnw("activity record failed", "action", e.Action, "student_id", e.StudentID, "err", err)
	}
}

// For starts an event for r, filling IP from requestinfo when present.
func For(r *http.Request, actor, action string) Event {
	e := Event{Actor: actor, Action: action}
	if info := requestinfo.FromContext(r.Context()); info != nil && info.Geo.IP != nil {
		e.IP = info.Geo.IP.String()
	}
	return e
}
