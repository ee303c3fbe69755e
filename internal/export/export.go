// Package export writes the augmented chart table to CSV, JSON or XLSX.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/utils"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for output names with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown export format")

const sheetName = "chart"

// Header is the column order of exported tables.
var Header = []string{
	analysis.ColDate, analysis.ColRank, analysis.ColSong, analysis.ColArtist,
	analysis.ColLastWeek, analysis.ColPeakRank, analysis.ColWeeksOnBoard,
	"peak-rank-first-4-weeks", "total-weeks-on-board",
}

// FormatFor picks a format from the output file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

func record(r analysis.Row) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		strconv.Itoa(r.Rank),
		r.Song,
		r.Artist,
		r.LastWeek.String(),
		r.PeakRank.String(),
		strconv.Itoa(r.WeeksOnBoard),
		r.PeakRankFirst4Weeks.String(),
		strconv.Itoa(r.TotalWeeksOnBoard),
	}
}

// WriteCSV streams rows as CSV. Absent ranks become empty cells.
func WriteCSV(w io.Writer, rows []analysis.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array. Absent ranks are null.
func WriteJSON(w io.Writer, rows []analysis.Row) error {
	if rows == nil {
		rows = []analysis.Row{}
	}
	b, err := utils.PrettyJSON(rows)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single-sheet workbook. Absent ranks are left blank.
func WriteXLSX(w io.Writer, rows []analysis.Row) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	head := make([]any, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := []any{
			r.Date.Format("2006-01-02"), r.Rank, r.Song, r.Artist,
			rankCell(r.LastWeek), rankCell(r.PeakRank), r.WeeksOnBoard,
			rankCell(r.PeakRankFirst4Weeks), r.TotalWeeksOnBoard,
		}
		if err := sw.SetRow(cell, vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func rankCell(n analysis.NullRank) any {
	if !n.Valid {
		return nil
	}
	return n.Rank
}

// Write encodes rows in the given format.
func Write(w io.Writer, rows []analysis.Row, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile encodes rows into path atomically, with the format taken from its extension.
func WriteFile(path string, rows []analysis.Row) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, rows, f); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
