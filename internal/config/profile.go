package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrUnknownProfile       = errors.New("unknown client profile")
	ErrUnknownStoreBackend  = errors.New("unknown store backend")
	ErrUnknownAfterRegister = errors.New("unknown afterRegister value")
	ErrUnknownBiometric     = errors.New("unknown biometric platform")
	ErrMissingCommand       = errors.New("the biometric command platform needs all of its commands")
)

const (
	AfterRegisterLogin  = "login"
	AfterRegisterReturn = "return"
)

type profileDefaults struct {
	backend        StoreBackend
	timeout        time.Duration
	afterRegister  string
	cacheProfile   bool
	requireProfile bool
	clearOnLogout  bool
	clearOnForced  bool
}

var profiles = map[Profile]profileDefaults{
	ProfileWeb: {
		backend:        StoreFile,
		afterRegister:  AfterRegisterLogin,
		cacheProfile:   true,
		requireProfile: true,
		clearOnLogout:  true,
	},
	ProfileMobile: {
		backend:       StoreEncryptedFile,
		timeout:       10 * time.Second,
		afterRegister: AfterRegisterReturn,
		clearOnLogout: true,
	},
}

// Resolve validates the configuration and fills every value left unset
// from the selected profile. After a successful call all pointer fields
// are non-nil.
func (c *Config) Resolve() error {
	if c.Profile == "" {
		c.Profile = ProfileWeb
	}
	d, ok := profiles[c.Profile]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, c.Profile)
	}

	if c.API.Timeout == nil {
		c.API.Timeout = &d.timeout
	}

	s := &c.Session
	if s.AfterRegister == "" {
		s.AfterRegister = d.afterRegister
	}
	switch s.AfterRegister {
	case AfterRegisterLogin, AfterRegisterReturn:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAfterRegister, s.AfterRegister)
	}
	s.CacheProfile = orDefault(s.CacheProfile, d.cacheProfile)
	s.RequireProfile = orDefault(s.RequireProfile, d.requireProfile)
	s.ClearCredentialOnLogout = orDefault(s.ClearCredentialOnLogout, d.clearOnLogout)
	s.ClearCredentialOnForcedSignOut = orDefault(s.ClearCredentialOnForcedSignOut, d.clearOnForced)

	if c.Store.Backend == "" {
		c.Store.Backend = d.backend
	}
	switch c.Store.Backend {
	case StoreFile, StoreEncryptedFile, StoreMemory, StoreValKey:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreBackend, c.Store.Backend)
	}
	c.Store.Dir = os.ExpandEnv(c.Store.Dir)

	switch c.Biometric.Platform {
	case "", BiometricNone:
		c.Biometric.Platform = BiometricNone
	case BiometricCommand:
		b := c.Biometric
		if len(b.HardwareCommand) == 0 || len(b.EnrolledCommand) == 0 || len(b.VerifyCommand) == 0 {
			return ErrMissingCommand
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBiometric, c.Biometric.Platform)
	}

	return nil
}

func orDefault(v *bool, def bool) *bool {
	if v != nil {
		return v
	}

	return &def
}
