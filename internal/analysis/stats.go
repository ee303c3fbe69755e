package analysis

import "math"

// pairAcc accumulates sums for an exact Pearson correlation.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (p *pairAcc) add(x, y float64) {
	p.n++
	p.sumX += x
	p.sumY += y
	p.sumXX += x * x
	p.sumYY += y * y
	p.sumXY += x * y
}

// r returns the coefficient, or ok=false when undefined (n < 2 or zero variance).
func (p *pairAcc) r() (float64, bool) {
	if p.n < 2 {
		return 0, false
	}
	denom := math.Sqrt((p.n*p.sumXX - p.sumX*p.sumX) * (p.n*p.sumYY - p.sumY*p.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	r := (p.n*p.sumXY - p.sumX*p.sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// Correlation relates early peak rank to chart longevity.
type Correlation struct {
	// RowLevel is Pearson r between PeakRankFirst4Weeks and TotalWeeksOnBoard across rows.
	RowLevel NullFloat `json:"row_level"`
	RowCount int       `json:"row_count"`
	// SongLevel is Pearson r between each key's early peak and its final week count.
	SongLevel NullFloat `json:"song_level"`
	SongCount int       `json:"song_count"`
}

// Correlate computes both correlations over rows with a present early peak rank.
// A negative r means better (lower) early peaks go with longer runs.
func Correlate(rows []Row) Correlation {
	var rowAcc pairAcc
	type keyAgg struct {
		peak     int
		maxWeeks int
	}
	keys := map[Key]*keyAgg{}
	var order []Key
	for _, r := range rows {
		if !r.PeakRankFirst4Weeks.Valid {
			continue
		}
		rowAcc.add(float64(r.PeakRankFirst4Weeks.Rank), float64(r.TotalWeeksOnBoard))
		k := r.Key()
		ka := keys[k]
		if ka == nil {
			ka = &keyAgg{peak: r.PeakRankFirst4Weeks.Rank}
			keys[k] = ka
			order = append(order, k)
		}
		if r.TotalWeeksOnBoard > ka.maxWeeks {
			ka.maxWeeks = r.TotalWeeksOnBoard
		}
	}
	var songAcc pairAcc
	for _, k := range order {
		ka := keys[k]
		songAcc.add(float64(ka.peak), float64(ka.maxWeeks))
	}

	c := Correlation{RowCount: int(rowAcc.n), SongCount: int(songAcc.n)}
	if r, ok := rowAcc.r(); ok {
		c.RowLevel = NullFloat{Value: r, Valid: true}
	}
	if r, ok := songAcc.r(); ok {
		c.SongLevel = NullFloat{Value: r, Valid: true}
	}
	return c
}
