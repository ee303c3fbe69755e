package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Parse reads the selected sheet (first sheet by default). Date cells stored as
// Excel serial numbers are converted before decoding.
func (xlsxParser) Parse(name string, src io.Reader, opt Options) ([]analysis.Observation, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, name, strings.Join(sheets, ", "))
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &analysis.DataFormatError{Column: analysis.ColDate, Err: analysis.ErrMissingColumn}
	}
	cols, err := analysis.NewColumnMap(rows[0])
	if err != nil {
		return nil, err
	}
	dateIdx, _ := cols.Index(analysis.ColDate)

	var out []analysis.Observation
	for i, rec := range rows[1:] {
		if blankRecord(rec) {
			continue
		}
		if opt.MaxRows > 0 && len(out) >= opt.MaxRows {
			break
		}
		if dateIdx < len(rec) {
			rec[dateIdx] = serialToDate(rec[dateIdx])
		}
		o, err := cols.Observation(i+2, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// serialToDate rewrites an Excel serial day number as YYYY-MM-DD; other values pass through.
func serialToDate(v string) string {
	s := strings.TrimSpace(v)
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}
