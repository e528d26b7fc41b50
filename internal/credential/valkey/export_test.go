package credentialvalkey

import "github.com/eventhub/eventhub-client/internal/credential"

func (r *Repository) Key(key credential.Key) (string, error) {
	return r.key(key)
}

var TTLSeconds = ttlSeconds
