package credential

import (
	"context"
	"time"
)

// Key names one persisted entry. The values match the keys used by the
// original clients so existing stores stay readable.
type Key string

const (
	KeyToken      Key = "auth_token"
	KeyProfile    Key = "user"
	KeyCredential Key = "biometric_credentials"
)

// Repository is the storage medium behind a Store. Get returns an error
// matching serviceerr.ErrNotFound when the key holds nothing. A ttl of zero
// means the entry does not expire.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}
