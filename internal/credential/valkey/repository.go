// Package credentialvalkey keeps credential entries in Valkey so several
// client processes of one user can share a session.
package credentialvalkey

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/eventhub/eventhub-client/internal/credential"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

type ObjectType string

const (
	objectTypeToken     ObjectType = "token"
	objectTypeProfile   ObjectType = "profile"
	objectTypeBiometric ObjectType = "biometric"
)

var (
	ErrGetEntry    = errors.New("getting entry from store")
	ErrStoreEntry  = errors.New("setting entry into storage")
	ErrDeleteEntry = errors.New("deleting entry from store")
	ErrUnknownKey  = errors.New("unknown credential key")
)

var objectTypes = map[credential.Key]ObjectType{
	credential.KeyToken:      objectTypeToken,
	credential.KeyProfile:    objectTypeProfile,
	credential.KeyCredential: objectTypeBiometric,
}

// Repository scopes every entry to one client ID below a key prefix:
// <prefix>:<objectType>:<clientID>.
type Repository struct {
	valkey   valkey.Client
	prefix   string
	clientID string
}

var _ = credential.Repository(&Repository{})

func NewRepository(valkeyClient valkey.Client, prefix, clientID string) *Repository {
	return &Repository{
		valkey:   valkeyClient,
		prefix:   strings.TrimSuffix(prefix, ":"),
		clientID: clientID,
	}
}

func (r *Repository) Get(ctx context.Context, key credential.Key) ([]byte, error) {
	k, err := r.key(key)
	if err != nil {
		return nil, errors.Join(ErrGetEntry, err)
	}

	b, err := r.valkey.Do(ctx, r.valkey.B().Get().Key(k).Build()).AsBytes()
	if err != nil {
		valkeyErr, ok := valkey.IsValkeyErr(err)
		if ok && valkeyErr.IsNil() {
			return nil, serviceerr.ErrNotFound
		}

		return nil, errors.Join(ErrGetEntry, fmt.Errorf("executing get command: %w", err))
	}

	return b, nil
}

func (r *Repository) Set(ctx context.Context, key credential.Key, value []byte, ttl time.Duration) error {
	k, err := r.key(key)
	if err != nil {
		return errors.Join(ErrStoreEntry, err)
	}

	cmd := r.valkey.B().Set().Key(k).Value(valkey.BinaryString(value))
	var built valkey.Completed
	if ttl > 0 {
		built = cmd.ExSeconds(ttlSeconds(ttl)).Build()
	} else {
		built = cmd.Build()
	}

	if err := r.valkey.Do(ctx, built).Error(); err != nil {
		return errors.Join(ErrStoreEntry, fmt.Errorf("executing set command: %w", err))
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, key credential.Key) error {
	k, err := r.key(key)
	if err != nil {
		return errors.Join(ErrDeleteEntry, err)
	}

	if err := r.valkey.Do(ctx, r.valkey.B().Del().Key(k).Build()).Error(); err != nil {
		return errors.Join(ErrDeleteEntry, fmt.Errorf("executing del command: %w", err))
	}

	return nil
}

func (r *Repository) key(key credential.Key) (string, error) {
	objectType, ok := objectTypes[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return fmt.Sprintf("%s:%s:%s", r.prefix, objectType, r.clientID), nil
}

// ttlSeconds rounds up so a sub-second remainder still expires.
func ttlSeconds(ttl time.Duration) int64 {
	return int64(math.Ceil(ttl.Seconds()))
}
