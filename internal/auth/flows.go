// Package auth orchestrates login, registration, logout and biometric
// re-authentication on top of the API client, the session state and the
// credential store.
package auth

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/biometric"
	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
	"github.com/eventhub/eventhub-client/internal/session"
	"github.com/eventhub/eventhub-client/internal/token"
)

const defaultRole = "user"

type Route string

const (
	RouteHome  Route = "home"
	RouteLogin Route = "login"
)

type Navigator interface {
	Navigate(ctx context.Context, route Route)
}

type NavigatorFunc func(ctx context.Context, route Route)

func (f NavigatorFunc) Navigate(ctx context.Context, route Route) { f(ctx, route) }

// AfterRegister is what happens once an account was created.
type AfterRegister string

const (
	// AfterRegisterLogin signs in with the new account right away.
	AfterRegisterLogin AfterRegister = "login"
	// AfterRegisterReturn sends the user back to the login screen.
	AfterRegisterReturn AfterRegister = "return"
)

type API interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) error
}

type SessionState interface {
	Snapshot() session.Snapshot
	SignIn(ctx context.Context, sess session.Session) session.Snapshot
	SignOut(ctx context.Context, reason session.SignOutReason) session.Snapshot
	SetBiometricEnabled(ctx context.Context, enabled bool) session.Snapshot
}

type CredentialStore interface {
	SaveCredential(ctx context.Context, c credential.Credential) error
	LoadCredential(ctx context.Context) (credential.Credential, bool)
	ClearCredential(ctx context.Context)
}

type Gate interface {
	IsSupported(ctx context.Context) bool
	Challenge(ctx context.Context, prompt string) bool
}

var (
	_ API             = (*apiclient.Client)(nil)
	_ SessionState    = (*session.State)(nil)
	_ CredentialStore = (*credential.Store)(nil)
	_ Gate            = (*biometric.Gate)(nil)
)

type Option func(*Flows)

func WithAfterRegister(a AfterRegister) Option {
	return func(f *Flows) { f.afterRegister = a }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flows) { f.now = now }
}

type Flows struct {
	api   API
	state SessionState
	store CredentialStore
	gate  Gate
	nav   Navigator

	afterRegister AfterRegister
	now           func() time.Time
}

func New(api API, state SessionState, store CredentialStore, gate Gate, nav Navigator, opts ...Option) *Flows {
	f := &Flows{
		api:           api,
		state:         state,
		store:         store,
		gate:          gate,
		nav:           nav,
		afterRegister: AfterRegisterLogin,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.nav == nil {
		f.nav = NavigatorFunc(func(context.Context, Route) {})
	}

	return f
}

// Login signs in with email and password. On failure the session is left
// as it was and the backend's message is returned.
func (f *Flows) Login(ctx context.Context, email, password string) (session.Snapshot, error) {
	if err := validateLogin(email, password); err != nil {
		return f.state.Snapshot(), err
	}

	resp, err := f.api.Login(ctx, email, password)
	if err != nil {
		slogctx.Info(ctx, "Login failed", "error", err)
		return f.state.Snapshot(), err
	}

	payload, err := token.Decode(resp.Token)
	if err != nil {
		return f.state.Snapshot(), fmt.Errorf("reading login token: %w", err)
	}
	if payload.Expired(f.now()) {
		return f.state.Snapshot(), fmt.Errorf("login token already expired: %w", serviceerr.ErrDecode)
	}

	if err := ctx.Err(); err != nil {
		return f.state.Snapshot(), err
	}

	snap := f.state.SignIn(ctx, newSession(email, resp, payload))
	f.nav.Navigate(ctx, RouteHome)

	return snap, nil
}

func newSession(email string, resp apiclient.LoginResponse, payload token.Payload) session.Session {
	sess := session.Session{
		SubjectID:   payload.SubjectID,
		DisplayName: displayName(email),
		Email:       email,
		Role:        defaultRole,
		Token:       resp.Token,
		Expiry:      payload.Expiry,
	}
	if u := resp.User; u != nil {
		if u.Name != "" {
			sess.DisplayName = u.Name
		}
		if u.Email != "" {
			sess.Email = u.Email
		}
		if u.Role != "" {
			sess.Role = u.Role
		}
	}

	return sess
}

// Register creates an account, then either signs in or returns to the
// login screen depending on the configured behaviour.
func (f *Flows) Register(ctx context.Context, in RegisterInput) (session.Snapshot, error) {
	if err := in.validate(); err != nil {
		return f.state.Snapshot(), err
	}

	err := f.api.Register(ctx, apiclient.RegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		Confirm:  in.Confirm,
		Name:     in.Name,
	})
	if err != nil {
		slogctx.Info(ctx, "Registration failed", "error", err)
		return f.state.Snapshot(), err
	}
	slogctx.Info(ctx, "Account created", "email", in.Email)

	if err := ctx.Err(); err != nil {
		return f.state.Snapshot(), err
	}

	if f.afterRegister == AfterRegisterReturn {
		f.nav.Navigate(ctx, RouteLogin)
		return f.state.Snapshot(), nil
	}

	return f.Login(ctx, in.Email, in.Password)
}

func (f *Flows) Logout(ctx context.Context) session.Snapshot {
	snap := f.state.SignOut(ctx, session.ReasonExplicit)
	f.nav.Navigate(ctx, RouteLogin)

	return snap
}

// EnableBiometric stores email and password for biometric login after the
// user passed a biometric check. Nothing is stored on failure.
func (f *Flows) EnableBiometric(ctx context.Context, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}
	if !f.gate.IsSupported(ctx) {
		return serviceerr.ErrBiometricUnavailable
	}
	if !f.gate.Challenge(ctx, biometric.PromptEnable) {
		return serviceerr.ErrBiometricFailed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := f.store.SaveCredential(ctx, credential.Credential{Email: email, Password: password}); err != nil {
		return err
	}
	f.state.SetBiometricEnabled(ctx, true)
	slogctx.Info(ctx, "Biometric login enabled")

	return nil
}

func (f *Flows) DisableBiometric(ctx context.Context) {
	f.store.ClearCredential(ctx)
	f.state.SetBiometricEnabled(ctx, false)
	slogctx.Info(ctx, "Biometric login disabled")
}

// AuthenticateWithBiometric logs in with the stored credential once the
// user passed a biometric check. On a device that lost biometric support
// the stored credential is removed.
func (f *Flows) AuthenticateWithBiometric(ctx context.Context) (session.Snapshot, error) {
	if !f.gate.IsSupported(ctx) {
		f.store.ClearCredential(ctx)
		f.state.SetBiometricEnabled(ctx, false)
		return f.state.Snapshot(), serviceerr.ErrBiometricUnavailable
	}
	if !f.gate.Challenge(ctx, biometric.PromptUnlock) {
		return f.state.Snapshot(), serviceerr.ErrBiometricFailed
	}

	cred, ok := f.store.LoadCredential(ctx)
	if !ok {
		return f.state.Snapshot(), serviceerr.New(serviceerr.CodeNotFound, "Biometric credentials not found")
	}

	return f.Login(ctx, cred.Email, cred.Password)
}
