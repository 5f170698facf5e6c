// Package services implements the content quality and remediation
// pipeline: validation, scanning, verification, processing, export and
// crash recovery.
package services

import (
	"strings"

	"github.com/quizhub/curator/internal/domain/entities"
)

// DefaultMinFieldLength is the minimum rune count for a prompt or
// answer before it counts as missing content.
const DefaultMinFieldLength = 8

// defaultPlaceholders is the closed vocabulary of placeholder markers,
// matched case-insensitively.
var defaultPlaceholders = []string{"TODO", "FIXME", "TBD", "XXX", "PLACEHOLDER", "LOREM IPSUM"}

// ValidationResult is the outcome of validating one record.
type ValidationResult struct {
	Valid  bool
	Issues []entities.IssueKind
}

// Primary returns the first (most severe) issue, which determines the
// enqueue reason and priority.
func (r ValidationResult) Primary() entities.IssueKind {
	if len(r.Issues) == 0 {
		return ""
	}
	return r.Issues[0]
}

// Reason renders the full issue list as a human-readable diagnostic.
func (r ValidationResult) Reason() string {
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = string(issue)
	}
	return strings.Join(parts, ", ")
}

// Has reports whether the result includes the given issue.
func (r ValidationResult) Has(kind entities.IssueKind) bool {
	for _, issue := range r.Issues {
		if issue == kind {
			return true
		}
	}
	return false
}

// QualityGate classifies content records as publishable or not. It is
// deterministic, side-effect-free, and never mutates its input.
type QualityGate struct {
	minFieldLength int
	placeholders   []string
}

// NewQualityGate creates a gate with the default thresholds.
func NewQualityGate() *QualityGate {
	return NewQualityGateWith(DefaultMinFieldLength, nil)
}

// NewQualityGateWith creates a gate with a custom minimum field length
// and extra placeholder markers on top of the default vocabulary.
func NewQualityGateWith(minFieldLength int, extraPlaceholders []string) *QualityGate {
	if minFieldLength <= 0 {
		minFieldLength = DefaultMinFieldLength
	}
	placeholders := make([]string, 0, len(defaultPlaceholders)+len(extraPlaceholders))
	placeholders = append(placeholders, defaultPlaceholders...)
	placeholders = append(placeholders, extraPlaceholders...)
	return &QualityGate{
		minFieldLength: minFieldLength,
		placeholders:   placeholders,
	}
}

// Validate evaluates the rules in fixed order (wrong format, missing
// content, placeholder content) and records every applicable issue. The
// first failing rule is the primary reason.
func (g *QualityGate) Validate(rec *entities.ContentRecord) ValidationResult {
	var issues []entities.IssueKind

	if _, structured := entities.DecodeChoicePayload(rec.AnswerPayload); structured {
		issues = append(issues, entities.IssueWrongFormat)
	}

	if g.tooShort(rec.PromptText) || g.tooShort(rec.AnswerPayload) {
		issues = append(issues, entities.IssueMissingContent)
	}

	if g.hasPlaceholder(rec.PromptText) || g.hasPlaceholder(rec.AnswerPayload) {
		issues = append(issues, entities.IssuePlaceholderContent)
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

func (g *QualityGate) tooShort(field string) bool {
	return len([]rune(strings.TrimSpace(field))) < g.minFieldLength
}

func (g *QualityGate) hasPlaceholder(field string) bool {
	upper := strings.ToUpper(field)
	for _, marker := range g.placeholders {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}
