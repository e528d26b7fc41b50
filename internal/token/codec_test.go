package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/apitest"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
	"github.com/eventhub/eventhub-client/internal/token"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name      string
		raw       string
		want      token.Payload
		errAssert assert.ErrorAssertionFunc
	}{
		{
			name:      "backend token",
			raw:       apitest.Token(t, 42, exp),
			want:      token.Payload{SubjectID: 42, Expiry: exp},
			errAssert: assert.NoError,
		},
		{
			name:      "numeric string user_id",
			raw:       sign(t, jwt.MapClaims{"user_id": "7", "exp": exp.Unix()}),
			want:      token.Payload{SubjectID: 7, Expiry: exp},
			errAssert: assert.NoError,
		},
		{
			name:      "falls back to sub",
			raw:       sign(t, jwt.MapClaims{"sub": "9", "exp": exp.Unix()}),
			want:      token.Payload{SubjectID: 9, Expiry: exp},
			errAssert: assert.NoError,
		},
		{
			name:      "empty",
			raw:       "",
			errAssert: assert.Error,
		},
		{
			name:      "not a jwt",
			raw:       "definitely-not-a-token",
			errAssert: assert.Error,
		},
		{
			name:      "missing exp",
			raw:       sign(t, jwt.MapClaims{"user_id": 1}),
			errAssert: assert.Error,
		},
		{
			name:      "missing subject",
			raw:       sign(t, jwt.MapClaims{"exp": exp.Unix()}),
			errAssert: assert.Error,
		},
		{
			name:      "user_id beyond float64 precision",
			raw:       sign(t, jwt.MapClaims{"user_id": int64(9007199254740993), "exp": exp.Unix()}),
			want:      token.Payload{SubjectID: 9007199254740993, Expiry: exp},
			errAssert: assert.NoError,
		},
		{
			name:      "user_id beyond int64",
			raw:       sign(t, jwt.MapClaims{"user_id": uint64(1 << 63), "exp": exp.Unix()}),
			errAssert: assert.Error,
		},
		{
			name:      "null user_id falls back to sub",
			raw:       sign(t, jwt.MapClaims{"user_id": nil, "sub": "3", "exp": exp.Unix()}),
			want:      token.Payload{SubjectID: 3, Expiry: exp},
			errAssert: assert.NoError,
		},
		{
			name:      "fractional user_id",
			raw:       sign(t, jwt.MapClaims{"user_id": 1.5, "exp": exp.Unix()}),
			errAssert: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := token.Decode(tt.raw)
			if !tt.errAssert(t, err) {
				return
			}
			if err != nil {
				assert.ErrorIs(t, err, serviceerr.ErrDecode)
				return
			}
			assert.Equal(t, tt.want.SubjectID, got.SubjectID)
			assert.True(t, tt.want.Expiry.Equal(got.Expiry), "expiry %s != %s", got.Expiry, tt.want.Expiry)
		})
	}
}

func TestPayload_Expired(t *testing.T) {
	now := time.Now()

	assert.False(t, token.Payload{Expiry: now.Add(time.Minute)}.Expired(now))
	assert.True(t, token.Payload{Expiry: now}.Expired(now))
	assert.True(t, token.Payload{Expiry: now.Add(-time.Minute)}.Expired(now))
}

func TestPayload_ExpiresIn(t *testing.T) {
	now := time.Now()

	assert.Equal(t, time.Minute, token.Payload{Expiry: now.Add(time.Minute)}.ExpiresIn(now))
	assert.Zero(t, token.Payload{Expiry: now.Add(-time.Minute)}.ExpiresIn(now))
}
