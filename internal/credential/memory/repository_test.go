package credentialmemory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/credential"
	credentialmemory "github.com/eventhub/eventhub-client/internal/credential/memory"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

func TestRepository(t *testing.T) {
	ctx := t.Context()
	repo := credentialmemory.NewRepository()

	_, err := repo.Get(ctx, credential.KeyProfile)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)

	value := []byte("profile")
	require.NoError(t, repo.Set(ctx, credential.KeyProfile, value, 0))

	// the stored copy is detached from the caller's slice
	value[0] = 'X'
	got, err := repo.Get(ctx, credential.KeyProfile)
	require.NoError(t, err)
	assert.Equal(t, []byte("profile"), got)

	require.NoError(t, repo.Delete(ctx, credential.KeyProfile))
	_, err = repo.Get(ctx, credential.KeyProfile)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_TTL(t *testing.T) {
	ctx := t.Context()
	repo := credentialmemory.NewRepository()

	require.NoError(t, repo.Set(ctx, credential.KeyToken, []byte("t"), 50*time.Millisecond))

	_, err := repo.Get(ctx, credential.KeyToken)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := repo.Get(ctx, credential.KeyToken)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
