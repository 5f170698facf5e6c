package entities

import (
	"encoding/json"
	"strings"
)

// Structured payloads are detected by a small ordered set of structural
// predicates rather than string sniffing: the payload must open with a
// collection token and decode into at least two option-like entries.

// minChoiceOptions is the smallest option count that makes a payload a
// multiple-choice structure rather than an incidental list.
const minChoiceOptions = 2

// LooksStructured reports whether a payload opens with a collection
// token. Cheap pre-check before a full decode.
func LooksStructured(payload string) bool {
	s := strings.TrimSpace(payload)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// DetectFormat classifies an answer payload. Payloads that open with a
// collection token but do not decode into usable options are unknown
// rather than plain text.
func DetectFormat(payload string) FormatKind {
	if !LooksStructured(payload) {
		return FormatPlainText
	}
	if _, ok := DecodeChoicePayload(payload); ok {
		return FormatStructuredChoice
	}
	return FormatUnknown
}

// DecodeChoicePayload attempts to decode an answer payload into
// structured-choice options. It accepts a JSON array of strings, a JSON
// array of option objects, or an object carrying an "options"/"choices"
// array with an optional "answer" marking the correct text. The second
// return value is false when the payload is not a usable structure.
func DecodeChoicePayload(payload string) ([]ChoiceOption, bool) {
	s := strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(s, "["):
		return decodeOptionList([]byte(s))
	case strings.HasPrefix(s, "{"):
		return decodeOptionObject([]byte(s))
	default:
		return nil, false
	}
}

func decodeOptionList(data []byte) ([]ChoiceOption, bool) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	options := make([]ChoiceOption, 0, len(raw))
	for _, item := range raw {
		opt, ok := decodeOption(item)
		if !ok {
			return nil, false
		}
		options = append(options, opt)
	}

	if len(options) < minChoiceOptions {
		return nil, false
	}
	return options, true
}

func decodeOptionObject(data []byte) ([]ChoiceOption, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	list, ok := raw["options"]
	if !ok {
		list, ok = raw["choices"]
	}
	if !ok {
		return nil, false
	}

	items, ok := list.([]any)
	if !ok {
		return nil, false
	}

	options := make([]ChoiceOption, 0, len(items))
	for _, item := range items {
		opt, decoded := decodeOption(item)
		if !decoded {
			return nil, false
		}
		options = append(options, opt)
	}
	if len(options) < minChoiceOptions {
		return nil, false
	}

	// An "answer" field marks the correct option by text.
	if answer, ok := raw["answer"].(string); ok {
		for i := range options {
			if options[i].Text == answer {
				options[i].Correct = true
			}
		}
	}

	return options, true
}

// decodeOption converts one array element into an option. Strings become
// plain options; objects must carry a "text" field and may carry
// "correct".
func decodeOption(item any) (ChoiceOption, bool) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return ChoiceOption{}, false
		}
		return ChoiceOption{Text: v}, true
	case map[string]any:
		text, ok := v["text"].(string)
		if !ok || strings.TrimSpace(text) == "" {
			return ChoiceOption{}, false
		}
		correct, _ := v["correct"].(bool)
		return ChoiceOption{Text: text, Correct: correct}, true
	default:
		return ChoiceOption{}, false
	}
}
