package concurrency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDetector_GitDirectoryIsStableAcrossCalls(t *testing.T) {
	d := NewSessionDetector(SessionStrategyGitDirectory)
	first := d.DetectSessionID()
	second := d.DetectSessionID()
	assert.Equal(t, first, second, "expected a stable session id for an unchanged working directory")
	assert.NotEmpty(t, first)
}

func TestSessionDetector_ManualStrategyPrefersManualID(t *testing.T) {
	d := NewSessionDetector(SessionStrategyManual)
	d.ManualID = "fixed-session"
	assert.Equal(t, "fixed-session", d.DetectSessionID())
}

func TestSessionDetector_ManualStrategyFallsBackWithoutManualID(t *testing.T) {
	d := NewSessionDetector(SessionStrategyManual)
	assert.NotEmpty(t, d.DetectSessionID())
}

func TestSanitizeDirectoryName_StripsDisallowedCharacters(t *testing.T) {
	assert.Equal(t, "my-repo-v2", sanitizeDirectoryName("My Repo.v2!"))
}
