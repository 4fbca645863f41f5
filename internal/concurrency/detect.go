package concurrency

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SessionStrategy selects how SessionDetector derives a session id when a
// caller doesn't supply one explicitly. Grounded on the teacher's
// internal/memory/session.go, generalized from its "daemon-" MCP-client
// prefix to a neutral one since this module has no daemon process of its
// own to name itself after.
type SessionStrategy string

const (
	SessionStrategyGitDirectory SessionStrategy = "git-directory"
	SessionStrategyManual       SessionStrategy = "manual"
	SessionStrategyHash         SessionStrategy = "hash"
)

// SessionDetector derives a stable session id from the caller's working
// directory, so repeated invocations from the same repository land in the
// same SessionManager entry without the caller having to track one itself.
type SessionDetector struct {
	Strategy SessionStrategy
	ManualID string
	Prefix   string

	cacheDir string
	cacheID  string
}

func NewSessionDetector(strategy SessionStrategy) *SessionDetector {
	return &SessionDetector{Strategy: strategy, Prefix: "session-"}
}

// DetectSessionID returns a session id per the configured strategy,
// falling back to directory detection whenever a strategy's preferred
// signal (a manual id, a git remote) isn't available.
func (d *SessionDetector) DetectSessionID() string {
	switch d.Strategy {
	case SessionStrategyManual:
		if d.ManualID != "" {
			return d.ManualID
		}
		return d.detectGitDirectory()
	case SessionStrategyHash:
		return d.detectGitHash()
	case SessionStrategyGitDirectory:
		fallthrough
	default:
		return d.detectGitDirectory()
	}
}

func (d *SessionDetector) detectGitDirectory() string {
	cwd, _ := os.Getwd()
	if d.cacheDir == cwd && d.cacheID != "" {
		return d.cacheID
	}

	gitRoot := findGitRoot(cwd)
	dirName := filepath.Base(cwd)
	if gitRoot != "" {
		dirName = filepath.Base(gitRoot)
	}

	d.cacheDir = cwd
	d.cacheID = d.Prefix + sanitizeDirectoryName(dirName)
	return d.cacheID
}

func (d *SessionDetector) detectGitHash() string {
	cwd, _ := os.Getwd()
	gitRoot := findGitRoot(cwd)
	if gitRoot == "" {
		return d.detectGitDirectory()
	}

	cmd := exec.Command("git", "-C", gitRoot, "config", "--get", "remote.origin.url")
	output, err := cmd.Output()
	if err != nil {
		return d.detectGitDirectory()
	}

	remoteURL := strings.TrimSpace(string(output))
	if remoteURL == "" {
		return d.detectGitDirectory()
	}

	hash := sha256.Sum256([]byte(remoteURL))
	return d.Prefix + hex.EncodeToString(hash[:8])
}

func findGitRoot(startDir string) string {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func sanitizeDirectoryName(name string) string {
	var result strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			result.WriteRune(r)
		case r == ' ' || r == '.':
			result.WriteRune('-')
		}
	}
	return strings.ToLower(result.String())
}
