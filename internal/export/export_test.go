package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/studentdesk/internal/student"
)

var sample = []student.Student{
	{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DateOfBirth: "1815-12-10T00:00:00.000Z"},
	{ID: 2, FirstName: "Émile", LastName: "Borel", Email: "emile@example.com", Address: "Paris, France"},
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sample))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"1", "Ada", "Lovelace", "ada@example.com", "1815-12-10", "", ""}, rows[1])
	assert.Equal(t, "Paris, France", rows[2][6])
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, nil))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, "Students", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), sample))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, PDF(&buf, "Students", time.Now(), nil))
	assert.NotZero(t, buf.Len())
}

func TestWidthsMatchColumns(t *testing.T) {
	assert.Len(t, widths, len(Columns))
}
