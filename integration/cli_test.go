//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/eventhub-client/internal/apitest"
)

type cli struct {
	t         *testing.T
	configDir string
	binary    string
}

// newCLI writes the repository config.yaml, pointed at srv and a private
// credential directory, and returns a runner for the built binary.
func newCLI(t *testing.T, srv *apitest.Server, overrides map[string]any) *cli {
	t.Helper()

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal(validConfig, &cfg))

	dir := t.TempDir()
	set(cfg, "api.baseURL", srv.BaseURL())
	set(cfg, "store.dir", filepath.Join(dir, "credentials"))
	for k, v := range overrides {
		set(cfg, k, v)
	}

	b, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), b, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)

	return &cli{t: t, configDir: dir, binary: filepath.Join(wd, binary)}
}

func set(cfg map[string]any, path string, value any) {
	keys := strings.Split(path, ".")
	m := cfg
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}

func (c *cli) run(stdin string, args ...string) (string, string, error) {
	c.t.Helper()

	cmd := exec.CommandContext(c.t.Context(), c.binary, append([]string{"--config-dir", c.configDir}, args...)...)
	cmd.Dir = c.configDir
	cmd.Env = append(os.Environ(), "HOME="+c.configDir)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

func (c *cli) json(into any, args ...string) {
	c.t.Helper()

	out, stderr, err := c.run("", append(args, "-o", "json")...)
	require.NoError(c.t, err, stderr)
	require.NoError(c.t, json.Unmarshal([]byte(out), into), out)
}

type sessionView struct {
	Status    string `json:"status"`
	SubjectID int64  `json:"subject_id"`
	Name      string `json:"name"`
}

func TestCLI_SessionLifecycle(t *testing.T) {
	srv := apitest.Start(t, apitest.WithLoginUser())
	ada := srv.AddUser("ada@example.com", "password123", "Ada")
	c := newCLI(t, srv, nil)

	var status sessionView
	c.json(&status, "status")
	assert.Equal(t, "unauthenticated", status.Status)

	_, stderr, err := c.run("password123\n", "login", "--email", "ada@example.com", "--password-stdin")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "eventhub events list")

	c.json(&status, "whoami")
	assert.Equal(t, "authenticated", status.Status)
	assert.Equal(t, ada.ID, status.SubjectID)
	assert.Equal(t, "Ada", status.Name)

	_, stderr, err = c.run("", "logout")
	require.NoError(t, err, stderr)

	_, stderr, err = c.run("", "whoami")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Not signed in")
}

func TestCLI_WrongPassword(t *testing.T) {
	srv := apitest.Start(t)
	srv.AddUser("ada@example.com", "password123", "Ada")
	c := newCLI(t, srv, nil)

	_, stderr, err := c.run("", "login", "--email", "ada@example.com", "--password", "nope-nope")

	assert.Error(t, err)
	assert.Contains(t, stderr, "Invalid email or password")
}

func TestCLI_Events(t *testing.T) {
	srv := apitest.Start(t, apitest.WithPaginatedEvents())
	srv.AddUser("ada@example.com", "password123", "Ada")
	c := newCLI(t, srv, nil)

	_, stderr, err := c.run("", "login", "--email", "ada@example.com", "--password", "password123")
	require.NoError(t, err, stderr)

	var created struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	c.json(&created, "events", "create",
		"--field", "name=Go meetup",
		"--field", "description=Talks",
		"--field", "date=2026-11-05",
		"--field", "location=Berlin",
	)
	assert.Equal(t, "Go meetup", created.Name)

	id := strconv.FormatInt(created.ID, 10)
	c.json(&created, "events", "update", id, "--field", "location=Rome")
	assert.Equal(t, "Rome", created.Location)
	assert.Equal(t, "Go meetup", created.Name)

	_, stderr, err = c.run("", "events", "join", id)
	require.NoError(t, err, stderr)

	var attending struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	c.json(&attending, "events", "attending")
	require.Len(t, attending.Data, 1)
	assert.Equal(t, created.ID, attending.Data[0].ID)

	out, stderr, err := c.run("", "events", "list")
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Go meetup")

	_, stderr, err = c.run("", "events", "delete", id)
	require.NoError(t, err, stderr)
}

func TestCLI_ForcedSignOut(t *testing.T) {
	srv := apitest.Start(t)
	srv.AddUser("ada@example.com", "password123", "Ada")
	c := newCLI(t, srv, map[string]any{"store.backend": "file"})

	_, stderr, err := c.run("", "login", "--email", "ada@example.com", "--password", "password123")
	require.NoError(t, err, stderr)

	srv.Fail("GET", "/events", 401, "Invalid token")
	_, stderr, err = c.run("", "events", "list")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Invalid token")

	var status sessionView
	c.json(&status, "status")
	assert.Equal(t, "unauthenticated", status.Status)
}

func TestCLI_Smoke(t *testing.T) {
	srv := apitest.Start(t)
	c := newCLI(t, srv, nil)

	var res struct {
		Events int `json:"events"`
	}
	c.json(&res, "smoke")
	assert.Zero(t, res.Events)
}
