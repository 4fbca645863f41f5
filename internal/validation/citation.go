package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// FileMetadata is the "Filesystem metadata" external collaborator named
// in spec.md §6: existence and content hash of linked source files, used
// by citation validation. A thin OS-backed implementation lives in
// osfiles.go; tests supply a fake.
type FileMetadata interface {
	Exists(path string) bool
	ContentHash(path string) (string, error)
}

// CitationResult is the citation dimension's detailed output, used to
// drive the CitationUpdate/EmbeddingRefresh healing actions.
type CitationResult struct {
	Score        float64
	MissingFiles []string
	DriftedFiles []string
}

// scoreCitation checks that a memory's linked files still exist.
// coretypes.Memory.LinkedFiles carries plain paths with no stored
// per-link content hash snapshot (unlike original_source's FileLink,
// which paired a path with an optional content_hash captured at link
// time), so content-hash drift detection here is necessarily best-effort:
// a file that exists is never flagged as drifted, since there is nothing
// to compare its current hash against. A memory with no linked files
// scores 1.0 — nothing to validate.
func scoreCitation(m *coretypes.Memory, fs FileMetadata) CitationResult {
	files := m.LinkedFiles.Slice()
	if len(files) == 0 {
		return CitationResult{Score: 1.0}
	}

	var missing []string
	for _, f := range files {
		if !fs.Exists(f) {
			missing = append(missing, f)
		}
	}

	score := float64(len(files)-len(missing)) / float64(len(files))
	return CitationResult{Score: score, MissingFiles: missing}
}
