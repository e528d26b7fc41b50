package cmdutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/apiclient"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name      string
		pairs     []string
		want      map[string]any
		errAssert assert.ErrorAssertionFunc
	}{
		{
			name:      "pairs",
			pairs:     []string{"name=Go meetup", "location=Berlin"},
			want:      map[string]any{"name": "Go meetup", "location": "Berlin"},
			errAssert: assert.NoError,
		},
		{
			name:      "value keeps further equals signs",
			pairs:     []string{"description=a=b"},
			want:      map[string]any{"description": "a=b"},
			errAssert: assert.NoError,
		},
		{
			name:      "later key wins",
			pairs:     []string{"name=first", "name=second"},
			want:      map[string]any{"name": "second"},
			errAssert: assert.NoError,
		},
		{
			name:      "empty value",
			pairs:     []string{"description="},
			want:      map[string]any{"description": ""},
			errAssert: assert.NoError,
		},
		{
			name:      "missing equals sign",
			pairs:     []string{"name"},
			errAssert: assert.Error,
		},
		{
			name:      "missing key",
			pairs:     []string{"=value"},
			errAssert: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields(tt.pairs)
			if !tt.errAssert(t, err) {
				return
			}
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidField)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFields(t *testing.T) {
	t.Run("overlays the given fields", func(t *testing.T) {
		in := apiclient.EventInput{Name: "Go meetup", Date: "2026-11-05", Location: "Berlin"}

		err := DecodeFields(map[string]any{"location": "Rome", "description": "Talks"}, &in)
		require.NoError(t, err)

		assert.Equal(t, apiclient.EventInput{
			Name:        "Go meetup",
			Description: "Talks",
			Date:        "2026-11-05",
			Location:    "Rome",
		}, in)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		var in apiclient.EventInput

		err := DecodeFields(map[string]any{"owner": "7"}, &in)
		assert.ErrorContains(t, err, "owner")
	})
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  []string
	}{
		{name: "one line", input: "secret\n", n: 1, want: []string{"secret"}},
		{name: "no trailing newline", input: "secret", n: 1, want: []string{"secret"}},
		{name: "crlf", input: "secret\r\n", n: 1, want: []string{"secret"}},
		{name: "two lines", input: "secret\nconfirm\n", n: 2, want: []string{"secret", "confirm"}},
		{name: "missing line reads empty", input: "secret\n", n: 2, want: []string{"secret", ""}},
		{name: "empty input", input: "", n: 1, want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(strings.NewReader(tt.input), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
