package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksStructured(t *testing.T) {
	assert.True(t, LooksStructured(`["a","b"]`))
	assert.True(t, LooksStructured(`  {"options":[]}`))
	assert.False(t, LooksStructured("plain text answer"))
	assert.False(t, LooksStructured(""))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatPlainText, DetectFormat("The capital of France is Paris."))
	assert.Equal(t, FormatStructuredChoice, DetectFormat(`["Paris", "London"]`))
	assert.Equal(t, FormatStructuredChoice, DetectFormat(`{"options":["yes","no"]}`))
	assert.Equal(t, FormatUnknown, DetectFormat(`{"answer":"42"}`))
	assert.Equal(t, FormatUnknown, DetectFormat(`[1, 2, 3]`))
}

func TestDecodeChoicePayload(t *testing.T) {
	t.Run("array of strings", func(t *testing.T) {
		options, ok := DecodeChoicePayload(`["Paris", "London", "Berlin"]`)
		require.True(t, ok)
		require.Len(t, options, 3)
		assert.Equal(t, "Paris", options[0].Text)
		assert.False(t, options[0].Correct)
	})

	t.Run("array of objects with correct marker", func(t *testing.T) {
		options, ok := DecodeChoicePayload(`[{"text":"4","correct":true},{"text":"5"}]`)
		require.True(t, ok)
		require.Len(t, options, 2)
		assert.True(t, options[0].Correct)
		assert.False(t, options[1].Correct)
	})

	t.Run("object with options and answer", func(t *testing.T) {
		options, ok := DecodeChoicePayload(`{"options":["red","green","blue"],"answer":"green"}`)
		require.True(t, ok)
		require.Len(t, options, 3)
		assert.False(t, options[0].Correct)
		assert.True(t, options[1].Correct)
	})

	t.Run("object with choices key", func(t *testing.T) {
		options, ok := DecodeChoicePayload(`{"choices":["yes","no"]}`)
		require.True(t, ok)
		assert.Len(t, options, 2)
	})

	t.Run("single option is not a choice structure", func(t *testing.T) {
		_, ok := DecodeChoicePayload(`["only one"]`)
		assert.False(t, ok)
	})

	t.Run("plain text", func(t *testing.T) {
		_, ok := DecodeChoicePayload("The capital of France is Paris.")
		assert.False(t, ok)
	})

	t.Run("numeric array is not option-like", func(t *testing.T) {
		_, ok := DecodeChoicePayload(`[1, 2, 3]`)
		assert.False(t, ok)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, ok := DecodeChoicePayload(`["unterminated`)
		assert.False(t, ok)
	})

	t.Run("object without options", func(t *testing.T) {
		_, ok := DecodeChoicePayload(`{"answer":"42"}`)
		assert.False(t, ok)
	})
}

func TestParseItemRef(t *testing.T) {
	ref, err := ParseItemRef("history/q-12")
	require.NoError(t, err)
	assert.Equal(t, ItemRef{ChannelID: "history", RecordID: "q-12"}, ref)
	assert.Equal(t, "history/q-12", ref.String())

	_, err = ParseItemRef("no-slash")
	require.Error(t, err)

	_, err = ParseItemRef("/missing-channel")
	require.Error(t, err)
}
