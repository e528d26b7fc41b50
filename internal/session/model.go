package session

import "time"

type Status int

const (
	StatusUninitialized Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is who is signed in and until when.
type Session struct {
	SubjectID   int64
	DisplayName string
	Email       string
	Role        string
	Token       string
	Expiry      time.Time
}

// Active reports whether the session holds a token that is still valid at now.
func (s Session) Active(now time.Time) bool {
	return s.Token != "" && s.Expiry.After(now)
}

// Snapshot is a copy of the state at one point in time.
type Snapshot struct {
	Status           Status
	Session          Session
	BiometricEnabled bool
}

func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

type SignOutReason string

const (
	// ReasonExplicit is a user initiated logout.
	ReasonExplicit SignOutReason = "explicit"
	// ReasonForced is a sign-out after the backend rejected the token.
	ReasonForced SignOutReason = "forced"
	// ReasonExpired is a sign-out after the token expired on the client clock.
	ReasonExpired SignOutReason = "expired"
)

// Policy selects what a client keeps across sign-outs and restarts.
type Policy struct {
	// CacheProfile stores the user profile next to the token on sign-in.
	CacheProfile bool
	// RequireProfile makes restore fail when no cached profile matches the token.
	RequireProfile bool
	// ClearCredentialOnLogout removes the biometric credential on explicit logout.
	ClearCredentialOnLogout bool
	// ClearCredentialOnForcedSignOut removes the biometric credential when the
	// backend rejects the token or the token expires.
	ClearCredentialOnForcedSignOut bool
}

func (p Policy) clearsCredential(reason SignOutReason) bool {
	if reason == ReasonExplicit {
		return p.ClearCredentialOnLogout
	}
	return p.ClearCredentialOnForcedSignOut
}
