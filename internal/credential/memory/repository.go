// Package credentialmemory keeps credential entries in process memory. It
// backs one-shot commands and tests where nothing should touch the disk.
package credentialmemory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

const cleanupInterval = 10 * time.Minute

type Repository struct {
	cache *cache.Cache
}

var _ = credential.Repository(&Repository{})

func NewRepository() *Repository {
	return &Repository{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *Repository) Get(_ context.Context, key credential.Key) ([]byte, error) {
	v, ok := r.cache.Get(string(key))
	if !ok {
		return nil, serviceerr.ErrNotFound
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, serviceerr.ErrNotFound
	}

	return append([]byte(nil), b...), nil
}

func (r *Repository) Set(_ context.Context, key credential.Key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	r.cache.Set(string(key), append([]byte(nil), value...), ttl)

	return nil
}

func (r *Repository) Delete(_ context.Context, key credential.Key) error {
	r.cache.Delete(string(key))
	return nil
}
