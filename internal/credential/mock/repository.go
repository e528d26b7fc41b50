package credentialmock

import (
	"context"
	"sync"
	"time"

	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

type RepositoryOption func(*Repository)

type Repository struct {
	mu      sync.Mutex
	entries map[credential.Key][]byte
	ttls    map[credential.Key]time.Duration

	getErr, setErr, deleteErr map[credential.Key]error
}

func WithEntry(key credential.Key, value []byte) RepositoryOption {
	return func(r *Repository) { r.entries[key] = value }
}
func WithGetError(key credential.Key, err error) RepositoryOption {
	return func(r *Repository) { r.getErr[key] = err }
}
func WithSetError(key credential.Key, err error) RepositoryOption {
	return func(r *Repository) { r.setErr[key] = err }
}
func WithDeleteError(key credential.Key, err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr[key] = err }
}

var _ = credential.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		entries:   make(map[credential.Key][]byte),
		ttls:      make(map[credential.Key]time.Duration),
		getErr:    make(map[credential.Key]error),
		setErr:    make(map[credential.Key]error),
		deleteErr: make(map[credential.Key]error),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) Get(_ context.Context, key credential.Key) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.getErr[key]; err != nil {
		return nil, err
	}
	b, ok := r.entries[key]
	if !ok {
		return nil, serviceerr.ErrNotFound
	}
	return b, nil
}

func (r *Repository) Set(_ context.Context, key credential.Key, value []byte, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.setErr[key]; err != nil {
		return err
	}
	r.entries[key] = value
	r.ttls[key] = ttl
	return nil
}

func (r *Repository) Delete(_ context.Context, key credential.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.deleteErr[key]; err != nil {
		return err
	}
	delete(r.entries, key)
	delete(r.ttls, key)
	return nil
}

// Has reports whether key currently holds a value.
func (r *Repository) Has(key credential.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[key]
	return ok
}

// Raw returns the stored bytes of key.
func (r *Repository) Raw(key credential.Key) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entries[key]
}

// TTL returns the ttl the last Set of key was called with.
func (r *Repository) TTL(key credential.Key) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ttls[key]
}
