// Package credentialfile keeps credential entries as files in one directory,
// one file per key. Entries are optionally encrypted with a passphrase.
package credentialfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

const (
	dirMode  os.FileMode = 0o700
	fileMode os.FileMode = 0o600
)

type RepositoryOption func(*Repository)

// WithPassphrase turns on encryption at rest.
func WithPassphrase(passphrase string) RepositoryOption {
	return func(r *Repository) { r.passphrase = passphrase }
}

func WithScryptParams(params ScryptParams) RepositoryOption {
	return func(r *Repository) { r.params = params }
}

type Repository struct {
	mu         sync.Mutex
	dir        string
	passphrase string
	params     ScryptParams
}

var _ = credential.Repository(&Repository{})

// NewRepository creates dir when missing.
func NewRepository(dir string, opts ...RepositoryOption) (*Repository, error) {
	if dir == "" {
		return nil, errors.New("credential directory is empty")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating credential directory: %w", err)
	}

	r := &Repository{
		dir:    dir,
		params: DefaultScryptParams,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r, nil
}

func (r *Repository) Encrypted() bool {
	return r.passphrase != ""
}

func (r *Repository) Get(_ context.Context, key credential.Key) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, serviceerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	if !r.Encrypted() {
		return b, nil
	}

	pt, err := open(r.passphrase, string(key), b)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}

	return pt, nil
}

// Set ignores ttl: expiry of file entries is left to the token itself.
func (r *Repository) Set(_ context.Context, key credential.Key, value []byte, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Encrypted() {
		sealed, err := seal(r.passphrase, string(key), value, r.params)
		if err != nil {
			return fmt.Errorf("sealing %s: %w", key, err)
		}
		value = sealed
	}

	return writeFile(r.path(key), value, fileMode)
}

func (r *Repository) Delete(_ context.Context, key credential.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", key, err)
	}

	return nil
}

func (r *Repository) path(key credential.Key) string {
	ext := ".json"
	if r.Encrypted() {
		ext = ".enc"
	}

	return filepath.Join(r.dir, string(key)+ext)
}

// writeFile writes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
