package consolidation

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]{1,}`)

// tokenize lowercases and splits on word boundaries, dropping stopwords
// and single characters.
func tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(matches))
	for _, w := range matches {
		if stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"this": true, "that": true, "it": true, "as": true, "at": true, "by": true,
	"we": true, "our": true, "has": true, "have": true, "had": true, "not": true,
}

// Keyphrase is one term with its TF-IDF weight within a document set.
type Keyphrase struct {
	Term  string
	Score float64
}

// ExtractKeyphrases runs TF-IDF over documents (one per cluster member)
// and returns the topN highest-scoring terms across the whole set, used
// as the abstraction phase's keyphrase summary (spec.md §4.4
// "Abstraction. TextRank + TF-IDF summarization"). This package's own
// implementation — no tfidf.rs source is shipped.
func ExtractKeyphrases(documents []string, topN int) []Keyphrase {
	if len(documents) == 0 {
		return nil
	}

	docTokens := make([][]string, len(documents))
	df := make(map[string]int)
	for i, doc := range documents {
		tokens := tokenize(doc)
		docTokens[i] = tokens
		seen := make(map[string]bool)
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(documents))
	scores := make(map[string]float64)
	for _, tokens := range docTokens {
		tf := make(map[string]int)
		for _, t := range tokens {
			tf[t]++
		}
		total := float64(len(tokens))
		if total == 0 {
			continue
		}
		for term, count := range tf {
			idf := math.Log(n/float64(df[term])) + 1.0
			scores[term] += (float64(count) / total) * idf
		}
	}

	out := make([]Keyphrase, 0, len(scores))
	for term, score := range scores {
		out = append(out, Keyphrase{Term: term, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
