package report

import (
	"math"
	"sort"
	"time"
)

// Annotate fills Peak and Drawdown over the ordered row sequence:
// peak[i] = max cumulative so far, drawdown[i] = cumulative - peak,
// always <= 0.
func Annotate(rows []Row) {
	peak := math.Inf(-1)
	for i := range rows {
		if rows[i].CumulativePnl > peak {
			peak = rows[i].CumulativePnl
		}
		rows[i].Peak = peak
		rows[i].Drawdown = rows[i].CumulativePnl - peak
	}
}

// Summary reduces an annotated report to its headline numbers.
type Summary struct {
	FinalCumulativePnl float64

	MaxDrawdown     float64 // most negative drawdown, <= 0
	TroughTime      time.Time
	PeakAtTrough    float64 // running peak at the max-drawdown bucket
	CapitalAtTrough float64 // capital invested at the max-drawdown bucket

	MaxCapital    float64
	MeanCapital   float64
	MedianCapital float64

	// Drawdown magnitude as a percentage of capital at the trough and
	// of mean capital invested. Zero when the denominator is zero.
	DrawdownPctOfTroughCapital float64
	DrawdownPctOfMeanCapital   float64
}

// Summarize computes the run summary from annotated rows.
func Summarize(rows []Row) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}

	s.FinalCumulativePnl = rows[len(rows)-1].CumulativePnl

	capitals := make([]float64, len(rows))
	var capSum float64
	for i, r := range rows {
		if r.Drawdown < s.MaxDrawdown {
			s.MaxDrawdown = r.Drawdown
			s.TroughTime = r.Time
			s.PeakAtTrough = r.Peak
			s.CapitalAtTrough = r.CapitalInvested
		}
		capitals[i] = r.CapitalInvested
		capSum += r.CapitalInvested
		if r.CapitalInvested > s.MaxCapital {
			s.MaxCapital = r.CapitalInvested
		}
	}
	s.MeanCapital = capSum / float64(len(rows))

	sort.Float64s(capitals)
	mid := len(capitals) / 2
	if len(capitals)%2 == 1 {
		s.MedianCapital = capitals[mid]
	} else {
		s.MedianCapital = (capitals[mid-1] + capitals[mid]) / 2
	}

	dd := -s.MaxDrawdown
	if s.CapitalAtTrough > 0 {
		s.DrawdownPctOfTroughCapital = dd / s.CapitalAtTrough * 100
	}
	if s.MeanCapital > 0 {
		s.DrawdownPctOfMeanCapital = dd / s.MeanCapital * 100
	}
	return s
}
