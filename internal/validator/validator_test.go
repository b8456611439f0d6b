package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type (
	Input struct {
		Title string  `validate:"required|maxlen:5"`
		Note  *string `validate:"required"`
		Color string  `validate:"regexp:#[0-9a-f]{6}"`
		Free  string
	}

	Wrapper struct {
		Input Input `validate:"nested"`
	}

	BadTag struct {
		Title string `validate:"len:5"`
	}

	BadRegexp struct {
		Title string `validate:"regexp:[a-"`
	}

	NotString struct {
		Count int `validate:"required"`
	}
)

func strPtr(s string) *string {
	return &s
}

func TestValidateCorrectValues(t *testing.T) {
	tests := []interface{}{
		Input{Title: "abc", Color: "#00ff00"},
		Input{Title: "abcde", Note: strPtr("note"), Color: "#000000"},
		&Input{Title: "абвгд", Color: "#ffffff"},
		Wrapper{Input: Input{Title: "a", Color: "#123456"}},
	}
	for _, tt := range tests {
		require.NoError(t, Validate(tt))
	}
}

func TestValidateIncorrectValues(t *testing.T) {
	tests := []struct {
		in       interface{}
		expected []ValidationError
	}{
		{
			in:       Input{Title: "  ", Color: "#000000"},
			expected: []ValidationError{{Field: "Title", Err: ErrValidateRequired}},
		},
		{
			in:       Input{Title: "abcdef", Color: "#000000"},
			expected: []ValidationError{{Field: "Title", Err: ErrValidateTooLong}},
		},
		{
			in: Input{Title: "ok", Note: strPtr(""), Color: "red"},
			expected: []ValidationError{
				{Field: "Note", Err: ErrValidateRequired},
				{Field: "Color", Err: ErrValidateNotMatchRegexp},
			},
		},
		{
			in:       Wrapper{Input: Input{Color: "#000000"}},
			expected: []ValidationError{{Field: "Title", Err: ErrValidateRequired}},
		},
	}
	for _, tt := range tests {
		err := Validate(tt.in)
		var vErrors ValidationErrors
		require.True(t, errors.As(err, &vErrors), "unexpected error %v", err)
		require.ElementsMatch(t, tt.expected, []ValidationError(vErrors))
		require.ErrorIs(t, err, tt.expected[0].Err)
	}
}

func TestValidateIncorrectInput(t *testing.T) {
	require.ErrorIs(t, Validate(nil), ErrIncorrectStruct)
	require.ErrorIs(t, Validate("string"), ErrIncorrectStruct)
	require.ErrorIs(t, Validate(BadTag{}), ErrIncorrectTag)
	require.ErrorIs(t, Validate(BadRegexp{Title: "a"}), ErrIncorrectTagValue)
	require.ErrorIs(t, Validate(NotString{}), ErrIncorrectTag)
}
