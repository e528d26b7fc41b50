package account

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/apitest"
	"github.com/eventhub/eventhub-client/internal/cmdutils"
)

const configTemplate = `
application:
  name: eventhub-test
  environment: test
logger:
  level: error
  format: json
profile: web
api:
  baseURL: %s
store:
  backend: file
  dir: %s
`

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()

	dir := t.TempDir()
	yaml := fmt.Sprintf(configTemplate, baseURL, filepath.Join(dir, "credentials"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	return dir
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "eventhub", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String(cmdutils.ConfigDirFlag, "", "")
	root.PersistentFlags().StringP(cmdutils.OutputFlag, "o", "", "")
	root.AddCommand(Cmds("{}")...)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--" + cmdutils.ConfigDirFlag, dir}, args...))

	err := root.ExecuteContext(t.Context())

	return out.String(), err
}

func TestStatusCmd(t *testing.T) {
	srv := apitest.Start(t, apitest.WithLoginUser())
	srv.AddUser("ada@example.com", "password123", "Ada")
	dir := writeConfig(t, srv.BaseURL())

	t.Run("without a stored session", func(t *testing.T) {
		out, err := execute(t, dir, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "unauthenticated")
	})

	t.Run("after login in another process", func(t *testing.T) {
		_, err := execute(t, dir, "login", "--email", "ada@example.com", "--password", "password123")
		require.NoError(t, err)

		out, err := execute(t, dir, "status", "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"status": "authenticated"`)
		assert.Contains(t, out, `"name": "Ada"`)
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := execute(t, dir, "status", "extra")
		assert.Error(t, err)
	})

	t.Run("does not call the backend", func(t *testing.T) {
		before := len(srv.Requests())

		_, err := execute(t, dir, "status")
		require.NoError(t, err)
		assert.Len(t, srv.Requests(), before)
	})
}

func TestCmds(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range Cmds("{}") {
		names[cmd.Name()] = cmd.RunE != nil
	}

	assert.Equal(t, map[string]bool{
		"login":    true,
		"register": true,
		"logout":   true,
		"status":   true,
		"whoami":   true,
	}, names)
}
