package concurrency

import "sort"

// SessionAnalytics accumulates per-session usage stats: most frequently
// retrieved memories, intent distribution, and retrieval latency.
// Ported directly from cortex-session/src/analytics.rs's
// SessionAnalytics.
type SessionAnalytics struct {
	RetrievalCounts      map[string]uint64
	IntentDistribution   map[string]uint64
	RetrievalLatenciesMS []float64
}

// newSessionAnalytics returns a zero-valued, ready-to-use analytics
// record.
func newSessionAnalytics() SessionAnalytics {
	return SessionAnalytics{
		RetrievalCounts:    make(map[string]uint64),
		IntentDistribution: make(map[string]uint64),
	}
}

// RecordRetrieval records a memory retrieval. Ported directly from
// analytics.rs's record_retrieval.
func (a *SessionAnalytics) RecordRetrieval(memoryID string) {
	if a.RetrievalCounts == nil {
		a.RetrievalCounts = make(map[string]uint64)
	}
	a.RetrievalCounts[memoryID]++
}

// RecordIntent records an intent classification. Ported directly from
// analytics.rs's record_intent.
func (a *SessionAnalytics) RecordIntent(intent string) {
	if a.IntentDistribution == nil {
		a.IntentDistribution = make(map[string]uint64)
	}
	a.IntentDistribution[intent]++
}

// RecordLatency records one retrieval's latency in milliseconds. Ported
// directly from analytics.rs's record_latency.
func (a *SessionAnalytics) RecordLatency(latencyMS float64) {
	a.RetrievalLatenciesMS = append(a.RetrievalLatenciesMS, latencyMS)
}

// retrievalCount pairs a memory id with its retrieval count, for
// MostRetrieved's sorted output.
type retrievalCount struct {
	MemoryID string
	Count    uint64
}

// MostRetrieved returns up to limit memory ids sorted by descending
// retrieval count. Ported directly from analytics.rs's most_retrieved.
func (a *SessionAnalytics) MostRetrieved(limit int) []retrievalCount {
	sorted := make([]retrievalCount, 0, len(a.RetrievalCounts))
	for id, count := range a.RetrievalCounts {
		sorted = append(sorted, retrievalCount{MemoryID: id, Count: count})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// AvgLatencyMS returns the mean retrieval latency, or 0 if none were
// recorded. Ported directly from analytics.rs's avg_latency_ms.
func (a *SessionAnalytics) AvgLatencyMS() float64 {
	if len(a.RetrievalLatenciesMS) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.RetrievalLatenciesMS {
		sum += v
	}
	return sum / float64(len(a.RetrievalLatenciesMS))
}
