// Package credential persists the session token, the cached user profile and
// the optional biometric credential pair.
//
// Reads and deletes never fail towards the caller: a storage problem is
// logged and reported as an empty result. Writes return an error wrapping
// serviceerr.ErrStorage so flows that must not report success can tell.
package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/serviceerr"
	"github.com/eventhub/eventhub-client/internal/token"
)

type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository) *Store {
	return &Store{
		repo: repo,
		now:  time.Now,
	}
}

// SaveToken persists the token. When the token carries an expiry the entry
// expires with it on backends that support expiry.
func (s *Store) SaveToken(ctx context.Context, raw string) error {
	var ttl time.Duration
	if payload, err := token.Decode(raw); err == nil {
		ttl = payload.ExpiresIn(s.now())
	}

	return s.set(ctx, KeyToken, []byte(raw), ttl)
}

// LoadToken returns the stored token, or false when there is none or it
// cannot be read.
func (s *Store) LoadToken(ctx context.Context) (string, bool) {
	b, ok := s.get(ctx, KeyToken)
	if !ok || len(b) == 0 {
		return "", false
	}

	return string(b), true
}

func (s *Store) ClearToken(ctx context.Context) {
	s.delete(ctx, KeyToken)
}

func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w: %w", serviceerr.ErrStorage, err)
	}

	return s.set(ctx, KeyProfile, b, 0)
}

func (s *Store) LoadProfile(ctx context.Context) (Profile, bool) {
	var p Profile
	if !s.getJSON(ctx, KeyProfile, &p) {
		return Profile{}, false
	}

	return p, true
}

func (s *Store) ClearProfile(ctx context.Context) {
	s.delete(ctx, KeyProfile)
}

func (s *Store) SaveCredential(ctx context.Context, c Credential) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding credential: %w: %w", serviceerr.ErrStorage, err)
	}

	return s.set(ctx, KeyCredential, b, 0)
}

func (s *Store) LoadCredential(ctx context.Context) (Credential, bool) {
	var c Credential
	if !s.getJSON(ctx, KeyCredential, &c) {
		return Credential{}, false
	}
	if c.Email == "" || c.Password == "" {
		slogctx.Warn(ctx, "Ignoring incomplete biometric credential")
		return Credential{}, false
	}

	return c, true
}

func (s *Store) ClearCredential(ctx context.Context) {
	s.delete(ctx, KeyCredential)
}

func (s *Store) HasCredential(ctx context.Context) bool {
	_, ok := s.LoadCredential(ctx)
	return ok
}

func (s *Store) set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		slogctx.Error(ctx, "Failed to write credential entry", "key", key, "error", err)
		return fmt.Errorf("writing %s: %w: %w", key, serviceerr.ErrStorage, err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, key Key) ([]byte, bool) {
	b, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Error(ctx, "Failed to read credential entry", "key", key, "error", err)
		}
		return nil, false
	}

	return b, true
}

func (s *Store) getJSON(ctx context.Context, key Key, into any) bool {
	b, ok := s.get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, into); err != nil {
		slogctx.Error(ctx, "Failed to decode credential entry", "key", key, "error", err)
		return false
	}

	return true
}

func (s *Store) delete(ctx context.Context, key Key) {
	if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, serviceerr.ErrNotFound) {
		slogctx.Error(ctx, "Failed to delete credential entry", "key", key, "error", err)
	}
}
