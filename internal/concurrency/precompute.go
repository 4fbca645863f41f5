package concurrency

// PrecomputeForFileChange runs the file-based and pattern-based
// strategies for a changed file and stores the deduplicated result in
// cache, returning how many candidates were cached. Ported directly
// from cortex-prediction/src/precompute.rs's precompute_for_file_change.
func PrecomputeForFileChange(filePath string, imports, symbols []string, store predictionStore, cache *PredictionCache) (int, error) {
	cache.InvalidateFile(filePath)

	signals := GatherFileSignals(filePath, imports, symbols)

	var all []PredictionCandidate

	fileCandidates, err := (FileBasedStrategy{}).Predict(signals, store)
	if err != nil {
		return 0, err
	}
	all = append(all, fileCandidates...)

	patternCandidates, err := (PatternBasedStrategy{}).Predict(signals, store)
	if err != nil {
		return 0, err
	}
	all = append(all, patternCandidates...)

	deduped := Deduplicate(all)
	cache.Insert(filePath, deduped, 0.0)

	return len(deduped), nil
}
