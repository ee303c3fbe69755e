package analysis

import (
	"errors"
	"testing"
)

func TestNewColumnMap_NormalizesHeaders(t *testing.T) {
	cm, err := NewColumnMap([]string{"\ufeffDate", " Rank", "Song", "Artist", "Last Week", "peak_rank", "Weeks_On_Board"})
	if err != nil {
		t.Fatalf("column map: %v", err)
	}
	if !cm.Has(ColLastWeek) || !cm.Has(ColPeakRank) {
		t.Fatalf("optional columns not detected")
	}
	o, err := cm.Observation(2, []string{"2021-11-06", "1", "Easy On Me", "Adele", "", "1", "3"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.Song != "Easy On Me" || o.Rank != 1 || o.WeeksOnBoard != 3 {
		t.Fatalf("unexpected observation %+v", o)
	}
	if o.LastWeek.Valid {
		t.Fatalf("empty last-week must be absent")
	}
	if o.PeakRank != SomeRank(1) {
		t.Fatalf("peak-rank = %+v", o.PeakRank)
	}
}

func TestNewColumnMap_MissingRequired(t *testing.T) {
	_, err := NewColumnMap([]string{"date", "song", "artist", "rank"})
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
	if dfe.Column != ColWeeksOnBoard || !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("unexpected error %+v", dfe)
	}
}

func TestObservation_FormatErrors(t *testing.T) {
	cm, err := NewColumnMap([]string{"date", "song", "artist", "rank", "weeks-on-board"})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name   string
		rec    []string
		column string
		cause  error
	}{
		{"bad date", []string{"06/31/2021x", "s", "a", "1", "1"}, ColDate, ErrBadDate},
		{"empty date", []string{"", "s", "a", "1", "1"}, ColDate, ErrBadDate},
		{"fractional rank", []string{"2021-01-02", "s", "a", "3.5", "1"}, ColRank, ErrNotInteger},
		{"text weeks", []string{"2021-01-02", "s", "a", "3", "three"}, ColWeeksOnBoard, ErrNotInteger},
		{"missing weeks", []string{"2021-01-02", "s", "a", "3"}, ColWeeksOnBoard, ErrNotInteger},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := cm.Observation(7, c.rec)
			var dfe *DataFormatError
			if !errors.As(err, &dfe) {
				t.Fatalf("expected DataFormatError, got %v", err)
			}
			if dfe.Line != 7 || dfe.Column != c.column || !errors.Is(err, c.cause) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	for in, want := range map[string]int{"7": 7, " 12": 0, "3.0": 3, "-2": -2, "2147483647": 2147483647, "2147483647.0": 2147483647} {
		got, ok := parseInt(in)
		if in == " 12" {
			if ok {
				t.Fatalf("untrimmed input should be rejected by parseInt itself")
			}
			continue
		}
		if !ok || got != want {
			t.Fatalf("parseInt(%q) = %d, %v", in, got, ok)
		}
	}
	for _, bad := range []string{"", "1e400", "NaN", "2.25", "x", "3000000000", "3000000000.0", "-3000000000"} {
		if _, ok := parseInt(bad); ok {
			t.Fatalf("parseInt(%q) should fail", bad)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2021-11-06", "2021/11/06", "11/06/2021", "2021-11-06T00:00:00Z"} {
		d, ok := parseDate(s)
		if !ok || d.Year() != 2021 || d.Month() != 11 || d.Day() != 6 {
			t.Fatalf("parseDate(%q) = %v, %v", s, d, ok)
		}
	}
}
