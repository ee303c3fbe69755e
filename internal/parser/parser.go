package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/chartlens/internal/analysis"
)

// Options controls how chart files are read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Parser decodes chart observations from one file format.
type Parser interface {
	CanParse(filename string) bool
	Parse(name string, r io.Reader, opt Options) ([]analysis.Observation, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported chart file format")

// Lookup returns the parser for filename.
func Lookup(filename string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filename, ErrUnsupported)
}

// ParseFile reads and decodes a chart file from disk.
func ParseFile(path string, opt Options) ([]analysis.Observation, error) {
	p, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chart file: %w", err)
	}
	defer f.Close()
	return p.Parse(path, f, opt)
}

// ParseBytes decodes an in-memory copy of a chart file; name selects the format.
func ParseBytes(name string, data []byte, opt Options) ([]analysis.Observation, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(name, bytes.NewReader(data), opt)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
