// internal/export/export.go
//
// CSV and PDF renditions of the student list.
//
// Context
// -------
// The list page offers two download links.  Both render the same columns in
// the same order as the on-screen table, with dates in YYYY-MM-DD.
//
// Notes
// -----
//   - PDF text goes through gofpdf's cp1252 translator; characters outside
//     that code page print as "?".
//   - Writers are streamed to w; callers set Content-Type first.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/yanizio/studentdesk/internal/student"
)

// Columns are the exported headers, in order.
var Columns = []string{"ID", "First name", "Last name", "Email", "Date of birth", "Phone", "Address"}

// pdf column widths in mm; they add up to the A4 landscape body (277mm).
var widths = []float64{14, 34, 34, 62, 28, 35, 70}

func record(s student.Student) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.FirstName,
		s.LastName,
		s.Email,
		s.BirthDate(),
		s.PhoneNumber,
		s.Address,
	}
}

// CSV writes a header row followed by one row per student.
func CSV(w io.Writer, students []student.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, s := range students {
		if err := cw.Write(record(s)); err != nil {
			return fmt.Errorf("csv row %d: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PDF writes a single table, landscape A4, titled and timestamped.
func PDF(w io.Writer, title string, generated time.Time, students []student.Student) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range Columns {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d students, generated %s", len(students), generated.UTC().Format(time.RFC1123)), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	header()

	for _, s := range students {
		for i, v := range record(s) {
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(students) == 0 {
		pdf.CellFormat(0, 6, "No students.", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
