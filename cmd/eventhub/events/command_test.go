package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		arg       string
		want      int64
		errAssert assert.ErrorAssertionFunc
	}{
		{arg: "42", want: 42, errAssert: assert.NoError},
		{arg: "0", errAssert: assert.Error},
		{arg: "-3", errAssert: assert.Error},
		{arg: "abc", errAssert: assert.Error},
		{arg: "", errAssert: assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID(tt.arg)
			if !tt.errAssert(t, err) {
				return
			}
			if err != nil {
				assert.ErrorIs(t, err, serviceerr.ErrValidation)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventInput(t *testing.T) {
	base := apiclient.EventInput{Name: "Go meetup", Date: "2026-11-05", Location: "Berlin"}

	tests := []struct {
		name      string
		pairs     []string
		want      apiclient.EventInput
		errAssert assert.ErrorAssertionFunc
	}{
		{
			name:      "no fields keeps the base",
			want:      base,
			errAssert: assert.NoError,
		},
		{
			name:  "fields overwrite",
			pairs: []string{"location=Rome", "description=Talks and pizza"},
			want: apiclient.EventInput{
				Name:        "Go meetup",
				Description: "Talks and pizza",
				Date:        "2026-11-05",
				Location:    "Rome",
			},
			errAssert: assert.NoError,
		},
		{
			name:      "malformed pair",
			pairs:     []string{"location"},
			errAssert: assert.Error,
		},
		{
			name:      "unknown field",
			pairs:     []string{"user_id=3"},
			errAssert: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eventInput(base, tt.pairs)
			if !tt.errAssert(t, err) {
				return
			}
			if err != nil {
				assert.ErrorIs(t, err, serviceerr.ErrValidation)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
