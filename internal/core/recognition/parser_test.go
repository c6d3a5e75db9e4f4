package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisionResponseJSON(t *testing.T) {
	text := "Sure! Here it is:\n{\"dish\": \"Pad Thai\", \"description\": \"Stir-fried noodles.\", \"confidence\": 0.82}\nEnjoy."

	got, err := ParseVisionResponse(text)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", got.Dish)
	assert.Equal(t, "Stir-fried noodles.", got.Description)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
}

func TestParseVisionResponseJSONDefaults(t *testing.T) {
	got, err := ParseVisionResponse("```json\n{\"dish\": \"Ramen\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Ramen", got.Dish)
	assert.Equal(t, "A delicious Ramen dish.", got.Description)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestParseVisionResponseClampsConfidence(t *testing.T) {
	got, err := ParseVisionResponse(`{"dish": "Pho", "confidence": 7}`)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
}

func TestParseVisionResponseRegexFallback(t *testing.T) {
	got, err := ParseVisionResponse("I think the dish: Margherita Pizza, served hot")
	require.NoError(t, err)
	assert.Equal(t, "Margherita Pizza, served hot", got.Dish)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
	assert.Contains(t, got.Description, "...")

	got, err = ParseVisionResponse(`This food: "Bibimbap" looks great`)
	require.NoError(t, err)
	assert.Equal(t, "Bibimbap", got.Dish)
}

func TestParseVisionResponseBrokenJSONFallsBackToRegex(t *testing.T) {
	got, err := ParseVisionResponse(`{dish: "Tacos", confidence: high}`)
	require.NoError(t, err)
	assert.Equal(t, "Tacos", got.Dish)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestParseVisionResponseFailure(t *testing.T) {
	for _, text := range []string{"", "   ", "I cannot tell what this is.", `{"dish": ""}`} {
		_, err := ParseVisionResponse(text)
		assert.ErrorIs(t, err, ErrParseFailure, "text=%q", text)
	}
}

func TestParseVisionResponseTruncatesDescription(t *testing.T) {
	long := "dish: Lasagna "
	for len(long) < 400 {
		long += "with layers "
	}
	got, err := ParseVisionResponse(long)
	require.NoError(t, err)
	assert.Len(t, []rune(got.Description), 203)
}
