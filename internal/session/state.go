// Package session holds the in-memory view of who is signed in. One State
// belongs to one client instance; it is the only writer of the persisted
// token and profile and notifies subscribers after every transition.
package session

import (
	"context"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/authbus"
	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/token"
)

// CredentialStore is the part of credential.Store the state depends on.
type CredentialStore interface {
	SaveToken(ctx context.Context, raw string) error
	LoadToken(ctx context.Context) (string, bool)
	ClearToken(ctx context.Context)
	SaveProfile(ctx context.Context, p credential.Profile) error
	LoadProfile(ctx context.Context) (credential.Profile, bool)
	ClearProfile(ctx context.Context)
	ClearCredential(ctx context.Context)
	HasCredential(ctx context.Context) bool
}

var _ CredentialStore = (*credential.Store)(nil)

type Listener func(ctx context.Context, snap Snapshot)

type Option func(*State)

func WithPolicy(p Policy) Option {
	return func(s *State) { s.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

type State struct {
	store  CredentialStore
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	snap      Snapshot
	listeners map[int]Listener
	order     []int
	nextID    int
}

func New(store CredentialStore, opts ...Option) *State {
	s := &State{
		store: store,
		policy: Policy{
			ClearCredentialOnLogout: true,
		},
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snap
}

// Subscribe registers l for every following transition.
func (s *State) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Restore derives the state from the persisted token. A token that is
// missing, malformed or expired leaves the client signed out with an empty
// store.
func (s *State) Restore(ctx context.Context) Snapshot {
	s.transition(ctx, func(snap *Snapshot) {
		snap.Status = StatusRestoring
	})

	sess, ok := s.restore(ctx)
	if !ok {
		s.store.ClearToken(ctx)
		s.store.ClearProfile(ctx)
	}
	biometric := s.store.HasCredential(ctx)

	return s.transition(ctx, func(snap *Snapshot) {
		snap.BiometricEnabled = biometric
		if !ok {
			snap.Status = StatusUnauthenticated
			snap.Session = Session{}
			return
		}
		snap.Status = StatusAuthenticated
		snap.Session = sess
	})
}

func (s *State) restore(ctx context.Context) (Session, bool) {
	raw, ok := s.store.LoadToken(ctx)
	if !ok {
		slogctx.Debug(ctx, "No stored token")
		return Session{}, false
	}

	payload, err := token.Decode(raw)
	if err != nil {
		slogctx.Warn(ctx, "Discarding stored token", "error", err)
		return Session{}, false
	}
	if payload.Expired(s.now()) {
		slogctx.Info(ctx, "Stored token expired", "expiry", payload.Expiry)
		return Session{}, false
	}

	sess := Session{
		SubjectID: payload.SubjectID,
		Token:     raw,
		Expiry:    payload.Expiry,
	}

	profile, ok := s.store.LoadProfile(ctx)
	if ok && profile.ID != 0 && profile.ID != payload.SubjectID {
		slogctx.Warn(ctx, "Cached profile belongs to another user", "profileID", profile.ID, "subjectID", payload.SubjectID)
		ok = false
	}
	if !ok {
		if s.policy.RequireProfile {
			slogctx.Info(ctx, "No cached profile for stored token")
			return Session{}, false
		}
		return sess, true
	}

	sess.DisplayName = profile.Name
	sess.Email = profile.Email
	sess.Role = profile.Role

	return sess, true
}

// SignIn makes sess the current session and persists it. A failure to
// persist is logged; the in-memory session is still established.
func (s *State) SignIn(ctx context.Context, sess Session) Snapshot {
	if s.policy.CacheProfile {
		err := s.store.SaveProfile(ctx, credential.Profile{
			ID:    sess.SubjectID,
			Email: sess.Email,
			Name:  sess.DisplayName,
			Role:  sess.Role,
		})
		if err != nil {
			slogctx.Warn(ctx, "Signed in without a cached profile", "error", err)
		}
	}
	if err := s.store.SaveToken(ctx, sess.Token); err != nil {
		slogctx.Warn(ctx, "Signed in without a persisted token", "error", err)
	}
	biometric := s.store.HasCredential(ctx)

	slogctx.Info(ctx, "Signed in", "subjectID", sess.SubjectID, "expiry", sess.Expiry)

	return s.transition(ctx, func(snap *Snapshot) {
		snap.Status = StatusAuthenticated
		snap.Session = sess
		snap.BiometricEnabled = biometric
	})
}

// SignOut clears the persisted token and profile, and the biometric
// credential when the policy says so for reason.
func (s *State) SignOut(ctx context.Context, reason SignOutReason) Snapshot {
	s.store.ClearToken(ctx)
	s.store.ClearProfile(ctx)
	if s.policy.clearsCredential(reason) {
		s.store.ClearCredential(ctx)
	}
	biometric := s.store.HasCredential(ctx)

	slogctx.Info(ctx, "Signed out", "reason", reason)

	return s.transition(ctx, func(snap *Snapshot) {
		snap.Status = StatusUnauthenticated
		snap.Session = Session{}
		snap.BiometricEnabled = biometric
	})
}

// SetBiometricEnabled records that a biometric credential was stored or
// removed.
func (s *State) SetBiometricEnabled(ctx context.Context, enabled bool) Snapshot {
	return s.transition(ctx, func(snap *Snapshot) {
		snap.BiometricEnabled = enabled
	})
}

// Token returns the bearer token of an authenticated session. A session
// whose token expired on the client clock is signed out first.
func (s *State) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()

	if snap.Status != StatusAuthenticated {
		return "", false
	}
	if !snap.Session.Active(s.now()) {
		s.SignOut(ctx, ReasonExpired)
		return "", false
	}

	return snap.Session.Token, true
}

// Subscriber is the part of authbus.Bus the state listens on.
type Subscriber interface {
	Subscribe(h authbus.Handler) (cancel func())
}

// Watch signs the session out whenever an authentication failure is
// published on bus.
func (s *State) Watch(bus Subscriber) (cancel func()) {
	return bus.Subscribe(func(ctx context.Context, ev authbus.Event) {
		if ev.Reason != authbus.ReasonUnauthorized {
			return
		}
		slogctx.Warn(ctx, "Backend rejected the session", "method", ev.Method, "path", ev.Path)
		s.SignOut(ctx, ReasonForced)
	})
}

// transition applies fn under the lock and notifies listeners after
// releasing it.
func (s *State) transition(ctx context.Context, fn func(snap *Snapshot)) Snapshot {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.snap
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, snap)
	}

	return snap
}
