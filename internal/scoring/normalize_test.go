package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAnswerVariants(t *testing.T) {
	value, err := NormalizeAnswer(TypeCheckbox, []any{"b", "a", float64(2)})
	require.NoError(t, err)
	require.Equal(t, Selection{Items: []string{"2", "a", "b"}}, value)

	value, err = NormalizeAnswer(TypeDropdown, "  Option 1 ")
	require.NoError(t, err)
	require.Equal(t, Choice{Text: "Option 1"}, value)

	value, err = NormalizeAnswer(TypeTextarea, " Hello World ")
	require.NoError(t, err)
	require.Equal(t, FreeText{Text: "hello world"}, value)

	value, err = NormalizeAnswer(TypeRating, json.RawMessage(`"3"`))
	require.NoError(t, err)
	require.Equal(t, Numeric{Number: 3}, value)
}

func TestNormalizeKeyTakesFirstElementForChoices(t *testing.T) {
	value, err := NormalizeKey(TypeMultipleChoice, []string{"first", "second"})
	require.NoError(t, err)
	require.Equal(t, Choice{Text: "first"}, value)

	value, err = NormalizeKey(TypeText, []any{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, FreeText{Text: "a,b"}, value)
}

func TestToTextMatchesLooseStringification(t *testing.T) {
	cases := map[string]any{
		"2.5":        2.5,
		"100":        float64(100),
		"true":       true,
		"a,,b":       []any{"a", nil, "b"},
		"1,x":        []any{float64(1), "x"},
		"null":       nil,
		"-Infinity":  math.Inf(-1),
		"0.00001234": 0.00001234,
	}
	for expected, input := range cases {
		got, err := toText(input)
		require.NoError(t, err)
		require.Equal(t, expected, got)
	}

	_, err := toText(map[string]any{})
	require.ErrorIs(t, err, ErrMalformedValue)
}

func TestParseNumber(t *testing.T) {
	require.Equal(t, 0.0, parseNumber("  "))
	require.Equal(t, 12.5, parseNumber(" 12.5 "))
	require.Equal(t, -3.0, parseNumber("-3"))
	require.Equal(t, 1000.0, parseNumber("1e3"))
	require.True(t, math.IsInf(parseNumber("Infinity"), 1))
	require.True(t, math.IsNaN(parseNumber("0x10")))
	require.True(t, math.IsNaN(parseNumber("1_000")))
	require.True(t, math.IsNaN(parseNumber("inf")))
	require.True(t, math.IsNaN(parseNumber("NaN")))
	require.True(t, math.IsNaN(parseNumber("12abc")))
}

func TestMatchesRejectsMixedVariants(t *testing.T) {
	require.False(t, Matches(Choice{Text: "1"}, FreeText{Text: "1"}))
	require.False(t, Matches(Numeric{Number: math.NaN()}, Numeric{Number: math.NaN()}))
	require.True(t, Matches(Selection{Items: []string{}}, Selection{Items: nil}))
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(nil))
	require.True(t, IsBlank(""))
	require.True(t, IsBlank([]any{}))
	require.True(t, IsBlank([]string{}))
	require.True(t, IsBlank(json.RawMessage(`[]`)))
	require.False(t, IsBlank(" "))
	require.False(t, IsBlank(float64(0)))
	require.False(t, IsBlank(false))
}
