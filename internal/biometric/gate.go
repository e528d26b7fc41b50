// Package biometric wraps the platform's biometric capability: a check that
// the device can verify the user and the verification itself.
package biometric

import (
	"context"
	"slices"

	slogctx "github.com/veqryn/slog-context"
)

type Type string

const (
	TypeFingerprint Type = "fingerprint"
	TypeFacial      Type = "facial"
	TypeIris        Type = "iris"
	TypeNone        Type = "none"
)

const (
	PromptDefault = "Authenticate to access your account"
	PromptEnable  = "Enable biometric login"
	PromptUnlock  = "Unlock to login"
)

// Platform is the device capability behind the gate.
type Platform interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	SupportedTypes(ctx context.Context) ([]Type, error)
	// Authenticate prompts the user and reports whether verification succeeded.
	Authenticate(ctx context.Context, prompt string) (bool, error)
}

type Gate struct {
	platform Platform
}

func NewGate(p Platform) *Gate {
	return &Gate{platform: p}
}

// IsSupported reports whether the device has biometric hardware with at
// least one enrolled biometric. Platform errors read as unsupported.
func (g *Gate) IsSupported(ctx context.Context) bool {
	hasHardware, err := g.platform.HasHardware(ctx)
	if err != nil {
		slogctx.Error(ctx, "Error checking biometric hardware", "error", err)
		return false
	}
	if !hasHardware {
		return false
	}

	enrolled, err := g.platform.IsEnrolled(ctx)
	if err != nil {
		slogctx.Error(ctx, "Error checking biometric enrollment", "error", err)
		return false
	}

	return enrolled
}

// Type returns the preferred biometric kind the device offers.
func (g *Gate) Type(ctx context.Context) Type {
	types, err := g.platform.SupportedTypes(ctx)
	if err != nil {
		slogctx.Error(ctx, "Error getting biometric type", "error", err)
		return TypeNone
	}

	for _, t := range []Type{TypeFingerprint, TypeFacial, TypeIris} {
		if slices.Contains(types, t) {
			return t
		}
	}

	return TypeNone
}

// Challenge asks the user to verify. It is false when the device is not
// supported, the user failed or cancelled, or the platform errored.
func (g *Gate) Challenge(ctx context.Context, prompt string) bool {
	if !g.IsSupported(ctx) {
		return false
	}
	if prompt == "" {
		prompt = PromptDefault
	}

	ok, err := g.platform.Authenticate(ctx, prompt)
	if err != nil {
		slogctx.Error(ctx, "Error during biometric authentication", "error", err)
		return false
	}

	return ok
}
