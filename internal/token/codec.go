// Package token decodes the session token issued by the backend.
//
// Signatures are not verified: the decoded payload is only used to skip
// requests that are bound to fail because the token already expired. The
// backend stays the only authority on whether a token is valid.
package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

var signatureAlgorithms = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}

// Payload is the part of the token the client cares about.
type Payload struct {
	SubjectID int64
	Expiry    time.Time
}

// Expired reports whether the token is no longer valid at now.
func (p Payload) Expired(now time.Time) bool {
	return !p.Expiry.After(now)
}

// ExpiresIn returns the remaining lifetime at now, never negative.
func (p Payload) ExpiresIn(now time.Time) time.Duration {
	return max(p.Expiry.Sub(now), 0)
}

// rawClaim keeps the JSON text of a claim so numbers are never routed
// through float64.
type rawClaim []byte

func (c *rawClaim) UnmarshalJSON(b []byte) error {
	*c = append((*c)[:0], b...)
	return nil
}

type customClaims struct {
	UserID rawClaim `json:"user_id"`
}

// Decode extracts the subject and expiry of a compact JWS. Every failure
// wraps serviceerr.ErrDecode.
func Decode(raw string) (Payload, error) {
	if raw == "" {
		return Payload{}, fmt.Errorf("empty token: %w", serviceerr.ErrDecode)
	}

	tok, err := jwt.ParseSigned(raw, signatureAlgorithms)
	if err != nil {
		return Payload{}, fmt.Errorf("parsing token: %w: %w", serviceerr.ErrDecode, err)
	}

	var standard jwt.Claims
	var custom customClaims
	if err := tok.UnsafeClaimsWithoutVerification(&standard, &custom); err != nil {
		return Payload{}, fmt.Errorf("reading claims: %w: %w", serviceerr.ErrDecode, err)
	}

	if standard.Expiry == nil {
		return Payload{}, fmt.Errorf("missing exp claim: %w", serviceerr.ErrDecode)
	}

	subject, err := subjectID(custom.UserID, standard.Subject)
	if err != nil {
		return Payload{}, fmt.Errorf("reading subject: %w: %w", serviceerr.ErrDecode, err)
	}

	return Payload{
		SubjectID: subject,
		Expiry:    standard.Expiry.Time(),
	}, nil
}

func subjectID(userID rawClaim, sub string) (int64, error) {
	raw := bytes.TrimSpace(userID)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		if sub == "" {
			return 0, fmt.Errorf("no user_id or sub claim")
		}
		return strconv.ParseInt(sub, 10, 64)
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("user_id %s is not an int64", raw)
		}
		return id, nil
	}
}
