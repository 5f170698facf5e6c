package entities

// IssueKind classifies a validation failure.
type IssueKind string

const (
	// IssueWrongFormat marks a structured-choice payload found in a
	// free-text corpus.
	IssueWrongFormat IssueKind = "wrong-format"
	// IssueMissingContent marks an empty or too-short prompt or answer.
	IssueMissingContent IssueKind = "missing-content"
	// IssuePlaceholderContent marks placeholder text (TODO, TBD, ...).
	IssuePlaceholderContent IssueKind = "placeholder-content"
)

// Priority returns the work-queue priority for an issue, lower is more
// urgent. Wrong format outranks placeholders, which outrank thin content.
func (k IssueKind) Priority() int {
	switch k {
	case IssueWrongFormat:
		return 1
	case IssuePlaceholderContent:
		return 2
	default:
		return 3
	}
}

// Severity returns a diagnostic weight in [0,1] used by verifier scoring.
func (k IssueKind) Severity() float64 {
	switch k {
	case IssueWrongFormat:
		return 0.9
	case IssuePlaceholderContent:
		return 0.6
	default:
		return 0.4
	}
}
