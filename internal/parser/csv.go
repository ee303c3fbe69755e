package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(name string, src io.Reader, opt Options) ([]analysis.Observation, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &analysis.DataFormatError{Column: analysis.ColDate, Err: analysis.ErrMissingColumn}
		}
		if dfe := malformed(err); dfe != nil {
			return nil, dfe
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := analysis.NewColumnMap(header)
	if err != nil {
		return nil, err
	}

	var out []analysis.Observation
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if dfe := malformed(err); dfe != nil {
				return nil, dfe
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		if blankRecord(rec) {
			continue
		}
		if opt.MaxRows > 0 && len(out) >= opt.MaxRows {
			break
		}
		o, err := cols.Observation(line, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// malformed converts a CSV syntax error (stray quote, bad field count) into a
// DataFormatError so callers classify it with the other load failures.
func malformed(err error) *analysis.DataFormatError {
	var pe *csv.ParseError
	if !errors.As(err, &pe) {
		return nil
	}
	return &analysis.DataFormatError{
		Line:     pe.Line,
		Position: pe.Column,
		Err:      pe.Err,
	}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
