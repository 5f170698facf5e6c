// Package entities contains core domain data structures.
package entities

import (
	"fmt"
	"strings"
	"time"
)

// FormatKind describes the shape of a record's answer payload.
type FormatKind string

const (
	FormatPlainText        FormatKind = "plain-text"
	FormatStructuredChoice FormatKind = "structured-choice"
	FormatUnknown          FormatKind = "unknown"
)

// ContentRecord represents one question/answer unit in a channel's
// free-text corpus. Once published its payload must be plain text;
// structured-choice payloads belong in the structured-test corpus.
type ContentRecord struct {
	ID              string     `json:"id"`
	ChannelID       string     `json:"channel_id"`
	PromptText      string     `json:"prompt_text"`
	AnswerPayload   string     `json:"answer_payload"`
	Format          FormatKind `json:"format"`
	MutationVersion int        `json:"mutation_version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Ref returns the record's corpus-wide reference.
func (r *ContentRecord) Ref() ItemRef {
	return ItemRef{ChannelID: r.ChannelID, RecordID: r.ID}
}

// ItemRef identifies one content record within the corpus.
type ItemRef struct {
	ChannelID string `json:"channel_id"`
	RecordID  string `json:"record_id"`
}

// String renders the reference as "channel/record".
func (r ItemRef) String() string {
	return r.ChannelID + "/" + r.RecordID
}

// ParseItemRef parses a "channel/record" reference.
func ParseItemRef(s string) (ItemRef, error) {
	channel, record, ok := strings.Cut(s, "/")
	if !ok || channel == "" || record == "" {
		return ItemRef{}, fmt.Errorf("invalid item ref %q (want channel/record)", s)
	}
	return ItemRef{ChannelID: channel, RecordID: record}, nil
}

// ChoiceOption is a single option of a structured-choice question.
type ChoiceOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

// TestQuestion is an entry in the structured-test corpus. Records
// relocated out of a free-text corpus land here with their decoded
// options; relocation never fabricates answer text.
type TestQuestion struct {
	ID            string         `json:"id"`
	ChannelID     string         `json:"channel_id"`
	PromptText    string         `json:"prompt_text"`
	Options       []ChoiceOption `json:"options"`
	SourceVersion int            `json:"source_version"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Ref returns the question's corpus-wide reference.
func (q *TestQuestion) Ref() ItemRef {
	return ItemRef{ChannelID: q.ChannelID, RecordID: q.ID}
}
