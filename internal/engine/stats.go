package engine

import (
	"sort"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// MerchantCount is a merchant's transaction volume within a batch.
type MerchantCount struct {
	MerchantKey string `json:"merchant_key"`
	Count       int    `json:"count"`
}

// Stats summarizes a batch.
type Stats struct {
	ByMethod          map[model.Method]int `json:"by_method"`
	ByCategory        map[string]int       `json:"by_category"`
	TopMerchants      []MerchantCount      `json:"top_merchants"`
	Total             int                  `json:"total"`
	Categorized       int                  `json:"categorized"`
	Failed            int                  `json:"failed"`
	AverageConfidence float64              `json:"average_confidence"`
}

// ComputeStats aggregates batch results. Failed results count toward Total
// and Failed only. TopMerchants holds at most topN entries ordered by count,
// then merchant key.
func ComputeStats(results []Result, topN int) Stats {
	stats := Stats{
		ByMethod:   make(map[model.Method]int),
		ByCategory: make(map[string]int),
		Total:      len(results),
	}

	merchants := make(map[string]int)
	var confidenceSum float64

	for _, r := range results {
		if r.Err != nil {
			stats.Failed++
			continue
		}
		stats.Categorized++
		stats.ByMethod[r.Match.Method]++
		stats.ByCategory[r.Match.CategoryID]++
		confidenceSum += r.Match.Confidence

		if key := r.Transaction.MerchantKey(); key != "" {
			merchants[key]++
		}
	}

	if stats.Categorized > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.Categorized)
	}

	top := make([]MerchantCount, 0, len(merchants))
	for key, count := range merchants {
		top = append(top, MerchantCount{MerchantKey: key, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].MerchantKey < top[j].MerchantKey
	})
	if topN >= 0 && len(top) > topN {
		top = top[:topN]
	}
	stats.TopMerchants = top

	return stats
}
