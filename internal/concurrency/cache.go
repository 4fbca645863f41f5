package concurrency

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// cachedPrediction is one file path's precomputed candidate list.
type cachedPrediction struct {
	candidates []PredictionCandidate
	confidence float64
	computedAt time.Time
}

// PredictionCache holds precomputed prediction results keyed by the file
// path whose change triggered them, so retrieval is near-instant when a
// prediction is consumed. Declared in cortex-prediction/src/lib.rs's
// `pub mod cache` (cache.rs is not shipped in the retrieval pack), built
// here from precompute.rs's shipped consumer — which calls
// cache.invalidate_file and cache.insert(path, deduped, 0.0) — and
// wired to fsnotify for filesystem-driven invalidation, matching the
// dependency's use elsewhere in the teacher's config hot-reload.
type PredictionCache struct {
	mu      sync.RWMutex
	entries map[string]cachedPrediction

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewPredictionCache returns an empty cache with no filesystem watch
// attached. Call Watch to start invalidating entries on file change.
func NewPredictionCache() *PredictionCache {
	return &PredictionCache{entries: make(map[string]cachedPrediction)}
}

// Insert stores a file path's precomputed candidates. Ported from
// precompute.rs's cache.insert call site.
func (c *PredictionCache) Insert(filePath string, candidates []PredictionCandidate, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filePath] = cachedPrediction{candidates: candidates, confidence: confidence, computedAt: time.Now()}
}

// Get returns the cached candidates for filePath, if any.
func (c *PredictionCache) Get(filePath string) ([]PredictionCandidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[filePath]
	if !ok {
		return nil, false
	}
	return entry.candidates, true
}

// InvalidateFile drops any cached prediction for filePath. Ported from
// precompute.rs's cache.invalidate_file call site.
func (c *PredictionCache) InvalidateFile(filePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, filePath)
}

// Len reports how many file paths currently have a cached prediction.
func (c *PredictionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Watch starts an fsnotify watch on dirs, invalidating any cache entry
// for a file the moment it is written or removed. Returns the watcher so
// callers can add further directories before the session ends; Stop
// tears it down.
func (c *PredictionCache) Watch(dirs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}

	c.watcher = watcher
	c.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					c.InvalidateFile(event.Name)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-c.done:
				return
			}
		}
	}()

	return nil
}

// Stop tears down the filesystem watch, if one was started.
func (c *PredictionCache) Stop() {
	if c.watcher == nil {
		return
	}
	close(c.done)
	c.watcher.Close()
	c.watcher = nil
}
