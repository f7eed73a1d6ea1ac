package retriever

import "math"

// Retrieval quality measures over collection file names, used by the
// benchmark command to score a query set against expected collections.

func PrecisionAtK(retrieved, relevant []string) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(countHits(retrieved, relevant)) / float64(len(retrieved))
}

func RecallAtK(retrieved, relevant []string) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(countHits(retrieved, relevant)) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant result, 0 if none.
func ReciprocalRank(retrieved, relevant []string) float64 {
	relevantSet := toSet(relevant)
	for i, r := range retrieved {
		if relevantSet[r] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// NDCG scores a ranking with binary relevance.
func NDCG(retrieved, relevant []string) float64 {
	relevantSet := toSet(relevant)
	gains := make([]float64, len(retrieved))
	for i, r := range retrieved {
		if relevantSet[r] {
			gains[i] = 1
		}
	}

	idealLen := len(relevant)
	if idealLen > len(retrieved) {
		idealLen = len(retrieved)
	}
	ideal := make([]float64, idealLen)
	for i := range ideal {
		ideal[i] = 1
	}

	idcg := calculateDCG(ideal)
	if idcg == 0 {
		return 0
	}
	return calculateDCG(gains) / idcg
}

// DistinctFiles lists the collection files of neighbors in rank order,
// without repeats.
func DistinctFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func calculateDCG(scores []float64) float64 {
	dcg := 0.0
	for i, score := range scores {
		dcg += score / math.Log2(float64(i+2))
	}
	return dcg
}

func countHits(retrieved, relevant []string) int {
	relevantSet := toSet(relevant)
	hits := 0
	for _, r := range retrieved {
		if relevantSet[r] {
			hits++
		}
	}
	return hits
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
