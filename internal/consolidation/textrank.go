package consolidation

import "sort"

const (
	textRankDamping    = 0.85
	textRankIterations = 30
	textRankTolerance  = 1e-4
)

// textRankSimilarity scores two sentences by token-overlap cosine,
// cheaper than a full TF-IDF vector comparison and good enough to build
// a sentence graph for ranking.
func textRankSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	overlap := 0
	for _, t := range a {
		if setB[t] {
			overlap++
		}
	}
	denom := logLen(len(a)) + logLen(len(b))
	if denom == 0 {
		return 0
	}
	return float64(overlap) / denom
}

func logLen(n int) float64 {
	if n <= 1 {
		return float64(n)
	}
	// avoid importing math twice for a one-line log; matches the
	// "length normalization" idea from the original TextRank paper
	// without needing natural-log precision here.
	l := 0.0
	for n > 1 {
		n /= 2
		l++
	}
	return l + 1
}

// RankedSentence is one sentence with its TextRank score.
type RankedSentence struct {
	Index    int
	Sentence string
	Score    float64
}

// TextRankSummarize builds a sentence-similarity graph over sentences
// and runs a PageRank-style iteration to rank them, returning the topN
// highest-scoring sentences in their original order — a standard
// extractive-summarization recipe. This package's own implementation;
// no textrank.rs source is shipped.
func TextRankSummarize(sentences []string, topN int) []RankedSentence {
	n := len(sentences)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []RankedSentence{{Index: 0, Sentence: sentences[0], Score: 1.0}}
	}

	tokens := make([][]string, n)
	for i, s := range sentences {
		tokens[i] = tokenize(s)
	}

	weights := make([][]float64, n)
	rowSums := make([]float64, n)
	for i := 0; i < n; i++ {
		weights[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			w := textRankSimilarity(tokens[i], tokens[j])
			weights[i][j] = w
			rowSums[i] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < textRankIterations; iter++ {
		next := make([]float64, n)
		var delta float64
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if i == j || rowSums[j] == 0 {
					continue
				}
				sum += weights[j][i] / rowSums[j] * scores[j]
			}
			next[i] = (1-textRankDamping) + textRankDamping*sum
			delta += absFloat(next[i] - scores[i])
		}
		scores = next
		if delta < textRankTolerance {
			break
		}
	}

	ranked := make([]RankedSentence, n)
	for i, s := range sentences {
		ranked[i] = RankedSentence{Index: i, Sentence: s, Score: scores[i]}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Index < ranked[j].Index })
	return ranked
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
