// Package export writes the notes summary as a workbook or a CSV file.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"picklist/model"
)

// SheetName is the worksheet holding the notes summary.
const SheetName = "Notes Summary"

// ErrNoNotes is returned when there is nothing to export.
var ErrNoNotes = errors.New("No notes found to download")

// Layout picks the column order.
type Layout string

const (
	LayoutVFID     Layout = "vfid"
	LayoutLocation Layout = "location"
)

// ParseLayout falls back to LayoutVFID for unknown values.
func ParseLayout(s string) Layout {
	if Layout(s) == LayoutLocation {
		return LayoutLocation
	}
	return LayoutVFID
}

type column struct {
	header string
	width  float64
	value  func(model.NoteView) string
}

var (
	colVFID     = column{"VFID", 12, func(v model.NoteView) string { return v.VFID }}
	colLocation = column{"Location", 15, func(v model.NoteView) string { return v.Location }}
	colProduct  = column{"ProductName", 25, func(v model.NoteView) string { return v.ProductName }}
	colNote     = column{"Note", 40, func(v model.NoteView) string { return v.Note }}
)

func columns(layout Layout) []column {
	if layout == LayoutLocation {
		return []column{colLocation, colVFID, colProduct, colNote}
	}
	return []column{colVFID, colLocation, colProduct, colNote}
}

// Headers lists the column headers for a layout.
func Headers(layout Layout) []string {
	cols := columns(layout)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

// FileName is prefix-YYYY-MM-DD.ext.
func FileName(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), ext)
}

// WriteNotesXLSX writes a one-sheet workbook.
func WriteNotesXLSX(w io.Writer, views []model.NoteView, layout Layout) error {
	if len(views) == 0 {
		return ErrNoNotes
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	cols := columns(layout)
	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return fmt.Errorf("failed to set width of %s: %w", c.header, err)
		}
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, v := range views {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.value(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", v.VFID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteNotesCSV writes a UTF-8 CSV with a BOM so spreadsheet programs detect the encoding.
func WriteNotesCSV(w io.Writer, views []model.NoteView, layout Layout) error {
	if len(views) == 0 {
		return ErrNoNotes
	}
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cols := columns(layout)
	if err := cw.Write(Headers(layout)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(cols))
	for _, v := range views {
		for i, c := range cols {
			record[i] = c.value(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", v.VFID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ParseFormat accepts "", xlsx and csv; "" means xlsx.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("format must be %s or %s", FormatXLSX, FormatCSV)
}

// ContentType is the MIME type of a format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteNotes writes views in the given format.
func WriteNotes(w io.Writer, views []model.NoteView, format string, layout Layout) error {
	switch format {
	case FormatCSV:
		return WriteNotesCSV(w, views, layout)
	case FormatXLSX:
		return WriteNotesXLSX(w, views, layout)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
