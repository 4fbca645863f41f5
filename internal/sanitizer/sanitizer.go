package sanitizer

// Redaction is one span of text replaced with a placeholder. Grounded on
// cortex-core's Redaction struct.
type Redaction struct {
	Category    string
	Placeholder string
	Start       int
	End         int
	Confidence  float64
}

// SanitizedText is the result of Sanitize. Grounded on cortex-core's
// SanitizedText struct.
type SanitizedText struct {
	Text       string
	Redactions []Redaction
}

// Sanitizer redacts PII and secrets from text, grounded on cortex-core's
// ISanitizer trait.
type Sanitizer interface {
	Sanitize(text string) (SanitizedText, error)
}
