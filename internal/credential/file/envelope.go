package credentialfile

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const envelopeVersion = 1

var errWrongPassphrase = errors.New("wrong passphrase or corrupted entry")

// ScryptParams tunes the key derivation of encrypted entries.
type ScryptParams struct {
	N, R, P int
}

// DefaultScryptParams is what interactive use should pay per entry.
var DefaultScryptParams = ScryptParams{N: 1 << 15, R: 8, P: 1}

// Bounds on the key derivation parameters read back from disk. Anything
// outside them cannot have been written by seal with sane settings.
const (
	maxScryptN = 1 << 20
	maxScryptR = 32
	maxScryptP = 16
)

func (p ScryptParams) valid() bool {
	return p.N > 1 && p.N <= maxScryptN && p.N&(p.N-1) == 0 &&
		p.R > 0 && p.R <= maxScryptR &&
		p.P > 0 && p.P <= maxScryptP
}

// envelope is the on-disk JSON structure of an encrypted entry.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase with a fresh salt and encrypts raw.
// The entry name is bound as additional data so entries cannot be swapped.
func seal(passphrase string, name string, raw []byte, params ScryptParams) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	key, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		N:      params.N,
		R:      params.R,
		P:      params.P,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, raw, []byte(name)),
	})
}

func open(passphrase string, name string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.V)
	}
	if len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, errWrongPassphrase
	}
	if !(ScryptParams{N: env.N, R: env.R, P: env.P}).valid() {
		return nil, errWrongPassphrase
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	pt, err := aead.Open(nil, env.Nonce, env.Cipher, []byte(name))
	if err != nil {
		return nil, errWrongPassphrase
	}

	return pt, nil
}
