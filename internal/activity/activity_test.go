// internal/activity/activity_test.go
//
// Store round-trips against sqlmock.

package activity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/studentdesk/internal/requestinfo"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "mysql")), mock
}

func TestMigrate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS student_activity").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStampsAndDefaults(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_activity (at, actor, action, student_id, detail, ip)")).
		WithArgs(at, "anonymous", Deleted, int64(7), "Ada Lovelace", "10.0.0.1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Record(context.Background(), Event{Action: Deleted, StudentID: 7, Detail: "Ada Lovelace", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO student_activity").WillReturnError(assert.AnError)

	err := s.Record(context.Background(), Event{Actor: "ada", Action: Created})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRecent(t *testing.T) {
	s, mock := newMock(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "at", "actor", "action", "student_id", "detail", "ip"}).
		AddRow(2, at, "ada@example.com", Updated, 7, "email", "").
		AddRow(1, at, "ada@example.com", Created, 7, "", "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, at, actor, action, student_id, detail, ip")).
		WithArgs(50).
		WillReturnRows(rows)

	got, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Updated, got[0].Action)
	assert.Equal(t, int64(7), got[1].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Event{}))
	got, err := r.Recent(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestNoteSwallowsErrors(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO student_activity").WillReturnError(assert.AnError)
	Note(context.Background(), s, Event{Action: Created})
	Note(context.Background(), nil, Event{Action: Created})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForReadsClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/students/new", nil)
	r.RemoteAddr = "192.0.2.7:5555"

	var got Event
	requestinfo.Enrich(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r, "ada", Created)
	})).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, Event{Actor: "ada", Action: Created, IP: "192.0.2.7"}, got)
	assert.Equal(t, "", For(httptest.NewRequest(http.MethodGet, "/", nil), "", Deleted).IP)
}
