package matching

import "sort"

// Aggregate combines per-category scores into one total using the weight
// vector. Weights need not sum to 1: the total is normalized by the summed
// weight of the categories actually present in the breakdown. A category
// that was never scored (absent key) contributes to neither numerator nor
// denominator, it must not silently count as zero.
//
// Categories are summed in sorted key order. Float addition is not
// associative, so summing in map order would make the total depend on
// iteration order and identical inputs could rank differently across runs.
func Aggregate(breakdown map[string]float64, weights map[string]float64) float64 {
	categories := make([]string, 0, len(breakdown))
	for category := range breakdown {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sum, weightSum float64
	for _, category := range categories {
		w, ok := weights[category]
		if !ok || w <= 0 {
			continue
		}
		sum += w * breakdown[category]
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return clamp01(sum / weightSum)
}
