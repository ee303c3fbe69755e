package analysis

import (
	"slices"
	"time"
)

// Table is the augmented chart table. It is immutable after construction; the
// accessors hand out copies.
type Table struct {
	source      string
	fingerprint string
	loadedAt    time.Time
	earlyWeeks  int
	rows        []Row
	keys        int
}

// TableInfo describes where a table came from.
type TableInfo struct {
	Source      string
	Fingerprint string
	LoadedAt    time.Time
}

// NewTable derives metrics over obs and wraps the result.
func NewTable(obs []Observation, opt DeriveOptions, info TableInfo) *Table {
	rows := DeriveMetrics(obs, opt)
	keys := make(map[Key]struct{})
	for _, o := range obs {
		keys[o.Key()] = struct{}{}
	}
	w := opt.EarlyWeeks
	if w <= 0 {
		w = DefaultEarlyWeeks
	}
	return &Table{
		source:      info.Source,
		fingerprint: info.Fingerprint,
		loadedAt:    info.LoadedAt,
		earlyWeeks:  w,
		rows:        rows,
		keys:        len(keys),
	}
}

func (t *Table) Source() string      { return t.source }
func (t *Table) Fingerprint() string { return t.fingerprint }
func (t *Table) LoadedAt() time.Time { return t.loadedAt }
func (t *Table) EarlyWeeks() int     { return t.earlyWeeks }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Keys returns the number of distinct (song, artist) pairs.
func (t *Table) Keys() int { return t.keys }

// Row returns the i-th row in input order.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns a copy of all rows in input order.
func (t *Table) Rows() []Row { return slices.Clone(t.rows) }

// DateSpan returns the earliest and latest issue dates. Both are zero for an empty table.
func (t *Table) DateSpan() (first, last time.Time) {
	for i, r := range t.rows {
		if i == 0 || r.Date.Before(first) {
			first = r.Date
		}
		if i == 0 || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}
