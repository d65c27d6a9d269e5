package scoring

import (
	"math"
	"sort"
)

// Normalize converts raw non-negative category weights into integer
// percentages that sum to exactly 100, using the largest remainder method.
// Relative ranking is preserved as closely as integer rounding allows; ties
// keep the original input order. The function is total: any finite input
// yields len(weights) non-negative integers summing to 100.
func Normalize(weights []float64) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	cleaned := make([]float64, n)
	total := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		cleaned[i] = w
		total += w
	}

	if total == 0 {
		return equalSplit(n)
	}

	scaled := make([]float64, n)
	for i, w := range cleaned {
		scaled[i] = w * 100 / total
	}

	return apportion(scaled)
}

// apportion distributes the rounding error of pre-scaled values so the
// integer parts sum to exactly 100. A positive deficit goes to the largest
// fractional remainders; the symmetric negative case takes from the smallest.
func apportion(values []float64) []int {
	n := len(values)
	result := make([]int, n)
	floorSum := 0
	for i, v := range values {
		result[i] = int(math.Floor(v))
		floorSum += result[i]
	}

	deficit := 100 - floorSum
	if deficit == 0 {
		return result
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	if deficit > 0 {
		sort.SliceStable(order, func(a, b int) bool {
			return remainder(values[order[a]]) > remainder(values[order[b]])
		})
		for i := 0; i < deficit && i < n; i++ {
			result[order[i]]++
		}
		// More than n only happens for degenerate sub-100 inputs; spread
		// the rest round-robin so the total still lands on 100.
		for i := n; i < deficit; i++ {
			result[order[i%n]]++
		}
		return result
	}

	sort.SliceStable(order, func(a, b int) bool {
		return remainder(values[order[a]]) < remainder(values[order[b]])
	})
	surplus := -deficit
	for i := 0; surplus > 0; i = (i + 1) % n {
		idx := order[i]
		if result[idx] > 0 {
			result[idx]--
			surplus--
		}
	}
	return result
}

func remainder(v float64) float64 {
	return v - math.Floor(v)
}

func equalSplit(n int) []int {
	result := make([]int, n)
	base := 100 / n
	extra := 100 % n
	for i := range result {
		result[i] = base
		if i < extra {
			result[i]++
		}
	}
	return result
}
