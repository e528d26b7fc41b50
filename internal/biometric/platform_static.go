package biometric

import (
	"context"
	"sync"
)

// StaticPlatform answers from its fields. The zero value is a device
// without biometric hardware.
type StaticPlatform struct {
	Hardware bool
	Enrolled bool
	Types    []Type
	// Verified is the outcome of every Authenticate call.
	Verified bool
	Err      error

	mu      sync.Mutex
	prompts []string
}

var _ Platform = (*StaticPlatform)(nil)

func (p *StaticPlatform) HasHardware(context.Context) (bool, error) {
	return p.Hardware, p.Err
}

func (p *StaticPlatform) IsEnrolled(context.Context) (bool, error) {
	return p.Enrolled, p.Err
}

func (p *StaticPlatform) SupportedTypes(context.Context) ([]Type, error) {
	return p.Types, p.Err
}

func (p *StaticPlatform) Authenticate(_ context.Context, prompt string) (bool, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	return p.Verified, p.Err
}

// Prompts returns the prompts Authenticate was called with.
func (p *StaticPlatform) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.prompts...)
}
