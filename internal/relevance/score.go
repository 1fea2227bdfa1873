// Package relevance ranks recalled patterns surfaced to the player during
// chamber and narrative interactions.
package relevance

import "sort"

// Fixed scoring policy. The 30-day recency half-scale, the 20-occurrence
// frequency cap, and the component weights are not configurable.
const (
	recencyHalfScaleDays = 30.0
	frequencyCap         = 20.0

	recencyWeight   = 0.4
	frequencyWeight = 0.3
	strengthWeight  = 0.3
)

// Pattern is one recalled pattern candidate.
type Pattern struct {
	Name              string
	DaysSinceLastSeen float64
	ObservedCount     int
	Strength          float64 // caller-supplied, expected in [0,1]
}

// Score combines recency, frequency, and strength into a single relevance
// value in [0,1]. Pure function, no side effects.
func Score(p Pattern) float64 {
	days := p.DaysSinceLastSeen
	if days < 0 {
		days = 0
	}
	recency := 1.0 / (1.0 + days/recencyHalfScaleDays)
	frequency := clamp01(float64(p.ObservedCount) / frequencyCap)
	strength := clamp01(p.Strength)

	return recencyWeight*recency + frequencyWeight*frequency + strengthWeight*strength
}

// Rank returns the patterns ordered by descending score. The sort is stable
// so equally-scored patterns keep their input order. The input is not
// modified.
func Rank(patterns []Pattern) []Pattern {
	out := append([]Pattern(nil), patterns...)
	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i]) > Score(out[j])
	})
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
