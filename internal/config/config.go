// Package config defines the necessary types to configure the client.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

// Profile selects a preset of storage and session behaviour.
type Profile string

const (
	ProfileWeb    Profile = "web"
	ProfileMobile Profile = "mobile"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Profile   Profile   `yaml:"profile" default:"web"`
	API       API       `yaml:"api"`
	Session   Session   `yaml:"session"`
	Store     Store     `yaml:"store"`
	ValKey    ValKey    `yaml:"valkey"`
	Biometric Biometric `yaml:"biometric"`
}

type API struct {
	BaseURL string `yaml:"baseURL" default:"http://localhost:8080/api/v1"`
	// Timeout of a single request. Nil takes the profile's value, zero
	// disables the timeout.
	Timeout *time.Duration `yaml:"timeout"`
}

// Session holds the sign-in and sign-out policies. Unset values are filled
// from the profile by Resolve.
type Session struct {
	AfterRegister                  string `yaml:"afterRegister"`
	CacheProfile                   *bool  `yaml:"cacheProfile"`
	RequireProfile                 *bool  `yaml:"requireProfile"`
	ClearCredentialOnLogout        *bool  `yaml:"clearCredentialOnLogout"`
	ClearCredentialOnForcedSignOut *bool  `yaml:"clearCredentialOnForcedSignOut"`
}

type StoreBackend string

const (
	StoreFile          StoreBackend = "file"
	StoreEncryptedFile StoreBackend = "encrypted-file"
	StoreMemory        StoreBackend = "memory"
	StoreValKey        StoreBackend = "valkey"
)

type Store struct {
	Backend    StoreBackend        `yaml:"backend"`
	Dir        string              `yaml:"dir" default:"$HOME/.eventhub/credentials"`
	Passphrase commoncfg.SourceRef `yaml:"passphrase"`
	Scrypt     Scrypt              `yaml:"scrypt"`
}

type Scrypt struct {
	N int `yaml:"n" default:"32768"`
	R int `yaml:"r" default:"8"`
	P int `yaml:"p" default:"1"`
}

type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"eventhub"`
	ClientID  string              `yaml:"clientID" default:"default"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

type BiometricPlatform string

const (
	BiometricNone    BiometricPlatform = "none"
	BiometricCommand BiometricPlatform = "command"
)

type Biometric struct {
	Platform        BiometricPlatform `yaml:"platform" default:"none"`
	HardwareCommand []string          `yaml:"hardwareCommand"`
	EnrolledCommand []string          `yaml:"enrolledCommand"`
	VerifyCommand   []string          `yaml:"verifyCommand"`
	Types           []string          `yaml:"types"`
}
