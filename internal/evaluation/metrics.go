package evaluation

// RecallAtK computes Recall@K: the fraction of labeled relevant chunk IDs
// found in the top-K retrieved IDs. Returns 0.0 when no labels exist.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		relevantSet[id] = struct{}{}
	}

	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}

	found := 0
	for _, id := range topK {
		if _, ok := relevantSet[id]; ok {
			found++
		}
	}

	return float64(found) / float64(len(relevant))
}

// MRRAtK computes the reciprocal rank of the first relevant chunk ID in
// the top-K retrieved IDs. Returns 0.0 when nothing relevant appears in
// the top K.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		relevantSet[id] = struct{}{}
	}

	topK := retrieved
	if k < len(topK) {
		topK = topK[:k]
	}

	for i, id := range topK {
		if _, ok := relevantSet[id]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}
