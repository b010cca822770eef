// Package eval computes recall@R for a batch of query results against
// ground-truth nearest neighbors, grounded on original_source/src/main.py's
// calculateRecallR/evaluateResults.
package eval

// RecallAtR returns the fraction of queries whose first ground-truth
// neighbor (groundTruth[i][0]) appears anywhere in the first r entries of
// results[i]. len(groundTruth) must equal len(results); r is clamped to
// each result's length.
func RecallAtR(groundTruth [][]uint64, results [][]uint64, r int) float64 {
	if len(results) == 0 {
		return 0
	}

	hits := 0
	for i, result := range results {
		if len(groundTruth[i]) == 0 {
			continue
		}
		want := groundTruth[i][0]

		limit := r
		if limit > len(result) {
			limit = len(result)
		}
		for j := 0; j < limit; j++ {
			if result[j] == want {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(results))
}

// EvaluateAll computes RecallAtR for every r in rs, returned in the same
// order.
func EvaluateAll(groundTruth [][]uint64, results [][]uint64, rs []int) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = RecallAtR(groundTruth, results, r)
	}
	return out
}
