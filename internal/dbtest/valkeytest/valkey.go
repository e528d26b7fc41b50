// Package valkeytest runs a throwaway ValKey server for tests.
package valkeytest

import (
	"context"
	"net"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	valkeycontainer "github.com/testcontainers/testcontainers-go/modules/valkey"
	slogctx "github.com/veqryn/slog-context"
)

const image = "valkey/valkey:8-alpine"

// Start runs a ValKey container and returns a client and the address it
// listens on. The container and the client are released with the test.
func Start(t *testing.T) (valkey.Client, string) {
	t.Helper()
	ctx := t.Context()

	valkeyContainer, err := valkeycontainer.Run(ctx, image)
	require.NoError(t, err, "starting the ValKey container")
	t.Cleanup(func() {
		if err := valkeyContainer.Terminate(context.Background()); err != nil {
			slogctx.Error(ctx, "Failed to terminate ValKey container", "error", err)
		}
	})

	port, err := valkeyContainer.MappedPort(ctx, nat.Port("6379"))
	require.NoError(t, err, "mapping a port for the ValKey container")

	addr := net.JoinHostPort("localhost", port.Port())
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	require.NoError(t, err, "creating a ValKey client")
	t.Cleanup(client.Close)

	return client, addr
}
