package analysis

// DefaultEarlyWeeks is the length of the early window used for the peak rank.
const DefaultEarlyWeeks = 4

// DeriveOptions controls metric derivation.
type DeriveOptions struct {
	// EarlyWeeks bounds the window (weeksOnBoard <= EarlyWeeks). Values <= 0 use DefaultEarlyWeeks.
	EarlyWeeks int
}

// DefaultDeriveOptions returns the four-week window.
func DefaultDeriveOptions() DeriveOptions {
	return DeriveOptions{EarlyWeeks: DefaultEarlyWeeks}
}

// DeriveMetrics augments every observation with its key's early peak rank and
// its own running week count. Output has the same length and order as obs.
func DeriveMetrics(obs []Observation, opt DeriveOptions) []Row {
	window := opt.EarlyWeeks
	if window <= 0 {
		window = DefaultEarlyWeeks
	}

	peaks := make(map[Key]int)
	for _, o := range obs {
		if o.WeeksOnBoard > window {
			continue
		}
		k := o.Key()
		if best, ok := peaks[k]; !ok || o.Rank < best {
			peaks[k] = o.Rank
		}
	}

	rows := make([]Row, len(obs))
	for i, o := range obs {
		r := Row{Observation: o, TotalWeeksOnBoard: o.WeeksOnBoard}
		if best, ok := peaks[o.Key()]; ok {
			r.PeakRankFirst4Weeks = SomeRank(best)
		}
		rows[i] = r
	}
	return rows
}

// Observations strips the derived fields, returning the rows as raw input.
func Observations(rows []Row) []Observation {
	out := make([]Observation, len(rows))
	for i, r := range rows {
		out[i] = r.Observation
	}
	return out
}
