// Package groupfit rates how well an idea's travel month suits a group's availability.
package groupfit

import (
	"math"

	"TripIdeas/internal/domain"
)

type monthWeight struct {
	month  int
	weight float64
}

// Score returns the weighted availability percentage around monthHint, or nil
// when there is no month hint, no sample at all, or no sample in the window.
// Adjacent months count half as much as the target month and wrap around the year.
func Score(monthHint *int, samples []domain.AvailabilitySample) *int {
	if monthHint == nil || len(samples) == 0 {
		return nil
	}
	m := *monthHint
	if m < 1 || m > 12 {
		return nil
	}

	sums := make(map[int]float64, 3)
	counts := make(map[int]int, 3)
	for _, s := range samples {
		sums[s.Month] += float64(s.Score)
		counts[s.Month]++
	}

	window := []monthWeight{
		{month: previous(m), weight: 0.5},
		{month: m, weight: 1.0},
		{month: next(m), weight: 0.5},
	}

	var weighted, total float64
	for _, w := range window {
		n := counts[w.month]
		if n == 0 {
			continue
		}
		weighted += sums[w.month] / float64(n) * w.weight
		total += w.weight
	}
	if total == 0 {
		return nil
	}

	score := int(math.Round(weighted / total))
	return &score
}

// ScoreIdeas scores every idea against the same group availability.
func ScoreIdeas(ideas []domain.Idea, samples []domain.AvailabilitySample) map[string]*int {
	out := make(map[string]*int, len(ideas))
	for _, idea := range ideas {
		out[idea.ID] = Score(idea.MonthHint, samples)
	}
	return out
}

func previous(m int) int {
	if m == 1 {
		return 12
	}
	return m - 1
}

func next(m int) int {
	if m == 12 {
		return 1
	}
	return m + 1
}
