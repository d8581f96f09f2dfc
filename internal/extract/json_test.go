package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
			ok:    true,
		},
		{
			name:  "prose around object",
			input: "Sure! Here is the data:\n{\"hotels\": []}\nHope that helps.",
			want:  `{"hotels": []}`,
			ok:    true,
		},
		{
			name:  "code fence",
			input: "```json\n[1, 2, 3]\n```",
			want:  `[1, 2, 3]`,
			ok:    true,
		},
		{
			name:  "nested braces",
			input: `{"a": {"b": {"c": 1}}} trailing`,
			want:  `{"a": {"b": {"c": 1}}}`,
			ok:    true,
		},
		{
			name:  "braces inside strings",
			input: `{"note": "a } inside and a \" escape"}`,
			want:  `{"note": "a } inside and a \" escape"}`,
			ok:    true,
		},
		{
			name:  "unbalanced",
			input: `{"a": 1`,
			ok:    false,
		},
		{
			name:  "no json",
			input: "no structured data here",
			ok:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FirstJSON(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestDecodeLoose(t *testing.T) {
	obj, err := DecodeLoose(`reply: {"headline": "hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "hi", obj["headline"])

	arr, err := DecodeLoose(`[{"name": "a"}]`)
	require.NoError(t, err)
	items, ok := arr["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)

	_, err = DecodeLoose("nothing here")
	assert.Error(t, err)
}
