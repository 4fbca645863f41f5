package validation

import "github.com/mattepiu/cortex/internal/coretypes"

// UpdateCitations rewrites a memory's linked files according to
// renameMap (old path -> new path), for when a git rename is detected
// out of band. Returns the number of links updated. Ported directly
// from healing/citation_update.rs's update_citations, adapted from the
// Rust FileLink/FunctionLink structs to this package's plain-path
// StringSet fields.
func UpdateCitations(m *coretypes.Memory, renameMap map[string]string) int {
	updated := 0

	for old, next := range renameMap {
		if m.LinkedFiles.Has(old) {
			delete(m.LinkedFiles, old)
			m.LinkedFiles.Add(next)
			updated++
		}
	}

	return updated
}
