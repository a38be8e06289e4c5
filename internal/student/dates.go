package student

import (
	"strings"
	"time"
)

// DateLayout is the browser's native date-input format and the only date
// shape Student Desk ever sends.
const DateLayout = "2006-01-02"

var inputLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
}

// FormDate converts whatever the API returned into YYYY-MM-DD.  Values it
// cannot read come back as "" so the form shows an empty date input rather
// than garbage.
func FormDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}
