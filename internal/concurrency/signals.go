package concurrency

import (
	"path/filepath"
	"strings"
	"time"
)

// FileSignals carries the active file and its extracted context. Ported
// directly from cortex-prediction/src/signals/file_signals.rs.
type FileSignals struct {
	ActiveFile string
	Imports    []string
	Symbols    []string
	Directory  string
}

// GatherFileSignals collects file signals from a path and its parsed
// metadata. Ported directly from file_signals.rs's gather.
func GatherFileSignals(activeFile string, imports, symbols []string) FileSignals {
	dir := ""
	if activeFile != "" {
		dir = filepath.Dir(activeFile)
	}
	return FileSignals{ActiveFile: activeFile, Imports: imports, Symbols: symbols, Directory: dir}
}

// RelevantPaths returns every path relevant to this signal: imports
// first, then the active file. Ported directly from file_signals.rs's
// relevant_paths.
func (f FileSignals) RelevantPaths() []string {
	paths := make([]string, 0, len(f.Imports)+1)
	paths = append(paths, f.Imports...)
	if f.ActiveFile != "" {
		paths = append(paths, f.ActiveFile)
	}
	return paths
}

// TemporalSignals carries time-of-day and session-age context. Ported
// directly from cortex-prediction/src/signals/temporal_signals.rs.
type TemporalSignals struct {
	HourOfDay           int
	DayOfWeek           time.Weekday
	SessionDurationSecs uint64
}

// GatherTemporalSignals derives temporal signals from the current time
// and the session's start time. Ported directly from
// temporal_signals.rs's gather.
func GatherTemporalSignals(sessionStart, now time.Time) TemporalSignals {
	dur := now.Sub(sessionStart)
	if dur < 0 {
		dur = 0
	}
	return TemporalSignals{
		HourOfDay:           now.Hour(),
		DayOfWeek:           now.Weekday(),
		SessionDurationSecs: uint64(dur.Seconds()),
	}
}

// TimeBucket returns a coarse time-of-day bucket for pattern matching.
// Ported directly from temporal_signals.rs's time_bucket: morning
// (6-11), afternoon (12-17), evening (18-23), night (0-5).
func (t TemporalSignals) TimeBucket() string {
	switch {
	case t.HourOfDay >= 6 && t.HourOfDay <= 11:
		return "morning"
	case t.HourOfDay >= 12 && t.HourOfDay <= 17:
		return "afternoon"
	case t.HourOfDay >= 18 && t.HourOfDay <= 23:
		return "evening"
	default:
		return "night"
	}
}

// BehavioralSignals carries recent user activity. Declared by
// signals/mod.rs's AggregatedSignals field but behavioral_signals.rs is
// not shipped in the retrieval pack; built here from strategies/
// behavioral.rs's shipped consumer (has_signals, recent_queries,
// recent_intents, frequent_memory_ids are all read there).
type BehavioralSignals struct {
	RecentQueries     []string
	RecentIntents     []string
	FrequentMemoryIDs []string
}

// HasSignals reports whether there is anything for BehavioralStrategy to
// act on.
func (b BehavioralSignals) HasSignals() bool {
	return len(b.RecentQueries) > 0 || len(b.RecentIntents) > 0 || len(b.FrequentMemoryIDs) > 0
}

// GitSignals carries version-control context. Ported directly from
// cortex-prediction/src/signals/git_signals.rs.
type GitSignals struct {
	BranchName           string
	ModifiedFiles        []string
	RecentCommitMessages []string
}

// GatherGitSignals collects git signals from the provided context.
// Ported directly from git_signals.rs's gather.
func GatherGitSignals(branchName string, modifiedFiles, recentCommitMessages []string) GitSignals {
	return GitSignals{BranchName: branchName, ModifiedFiles: modifiedFiles, RecentCommitMessages: recentCommitMessages}
}

var branchPrefixes = map[string]bool{
	"feature": true, "fix": true, "bugfix": true, "hotfix": true,
	"release": true, "chore": true, "main": true, "master": true, "develop": true,
}

// BranchKeywords extracts domain keywords from the branch name, e.g.
// "feature/auth-refactor" -> ["auth", "refactor"]. Ported directly from
// git_signals.rs's branch_keywords.
func (g GitSignals) BranchKeywords() []string {
	if g.BranchName == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.FieldsFunc(g.BranchName, func(r rune) bool { return r == '/' || r == '-' || r == '_' }) {
		lower := strings.ToLower(part)
		if lower == "" || branchPrefixes[lower] {
			continue
		}
		keywords = append(keywords, lower)
	}
	return keywords
}

// AggregatedSignals bundles every signal category, used as the common
// input to all four prediction strategies. Ported directly from
// cortex-prediction/src/signals/mod.rs's AggregatedSignals.
type AggregatedSignals struct {
	File       FileSignals
	Temporal   TemporalSignals
	Behavioral BehavioralSignals
	Git        GitSignals
}
