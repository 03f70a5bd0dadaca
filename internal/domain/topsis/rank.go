package topsis

import "sort"

// averageRanks ranks scores in descending order, 1 being the highest.
// Equal scores share the mean of the positions they occupy, so two rows tied
// for second place both get 2.5 and the next row gets 4.
func averageRanks(scores []float64) []float64 {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make([]float64, len(scores))
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && scores[order[end]] == scores[order[start]] {
			end++
		}
		// positions start+1..end, inclusive
		shared := float64(start+1+end) / 2
		for _, idx := range order[start:end] {
			ranks[idx] = shared
		}
		start = end
	}
	return ranks
}
