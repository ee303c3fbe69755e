package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Observation is one song's recorded position on the chart for a single issue date.
type Observation struct {
	Date         time.Time `json:"date"`
	Song         string    `json:"song"`
	Artist       string    `json:"artist"`
	Rank         int       `json:"rank"`
	WeeksOnBoard int       `json:"weeks_on_board"`
	// Optional columns carried through from richer exports (e.g. Billboard Hot 100).
	LastWeek NullRank `json:"last_week"`
	PeakRank NullRank `json:"peak_rank"`
}

// Key identifies a song by title and performer. Titles alone are not unique.
type Key struct {
	Song   string
	Artist string
}

// Key returns the (song, artist) partition key of the observation.
func (o Observation) Key() Key { return Key{Song: o.Song, Artist: o.Artist} }

// NullRank is a chart position that may be absent. The zero value is absent.
type NullRank struct {
	Rank  int
	Valid bool
}

// SomeRank returns a present rank.
func SomeRank(r int) NullRank { return NullRank{Rank: r, Valid: true} }

// String renders the rank, or "" when absent.
func (n NullRank) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Rank)
}

func (n NullRank) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Rank)), nil
}

func (n *NullRank) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullRank{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = SomeRank(v)
	return nil
}

// NullFloat is an aggregate that may have no contributing rows.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float returns the value, or NaN when absent.
func (n NullFloat) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Row is an observation augmented with the derived early-success metrics.
type Row struct {
	Observation
	// PeakRankFirst4Weeks is the best rank of the row's (song, artist) within the
	// early window, broadcast to every row of that key.
	PeakRankFirst4Weeks NullRank `json:"peak_rank_first_4_weeks"`
	// TotalWeeksOnBoard is the row's own running week count, not the key's maximum.
	TotalWeeksOnBoard int `json:"total_weeks_on_board"`
}
