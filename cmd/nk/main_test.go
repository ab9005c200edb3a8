package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/notekeeper/internal/apitest"
	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/session"
)

// withTmpConfig points the config and session directory at a temp dir and
// clears env overrides. It returns the notekeeper config dir.
func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"NOTEKEEPER_API_URL", "NOTEKEEPER_UPDATE_STRATEGY", "NOTEKEEPER_LOG_LEVEL", "NOTEKEEPER_TIMEOUT"} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "notekeeper")
}

// run executes one nk invocation against srv and returns stdout.
func run(t *testing.T, srv *apitest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd("1.2.3", "2026-01-02")
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	if srv != nil {
		args = append([]string{"--server", srv.URL()}, args...)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	withTmpConfig(t)

	out, err := run(t, nil, "", "version")
	require.NoError(t, err)
	require.Equal(t, "nk 1.2.3 (2026-01-02)\n", out)
}

func TestBadConfigFails(t *testing.T) {
	withTmpConfig(t)

	_, err := run(t, nil, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "health")
	require.Error(t, err)

	_, err = run(t, nil, "", "--update-strategy", "patch", "health")
	require.Error(t, err)
}

func TestFlagsOverrideInvalidEnv(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	srv.Seed("title", "body")
	t.Setenv("NOTEKEEPER_UPDATE_STRATEGY", "bogus")

	_, err := run(t, srv, "", "health")
	require.ErrorContains(t, err, "update_strategy")

	out, err := run(t, srv, "", "--update-strategy", "replace", "notes", "edit", "1", "--title", "fixed")
	require.NoError(t, err, "a valid flag replaces the bad env value")
	require.Equal(t, "updated 1 -> 1\n", out)

	out, err = run(t, srv, "", "--update-strategy", "Replace", "notes", "edit", "1", "--content", "again")
	require.NoError(t, err, "strategy names are case-insensitive")
	require.Equal(t, "updated 1 -> 1\n", out)

	stored := srv.Notes()
	require.Len(t, stored, 1)
	require.Equal(t, "fixed", stored[0].Title)
	require.Equal(t, "again", stored[0].Body)
}

func TestHealthAndSum(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)

	out, err := run(t, srv, "", "health")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	require.Equal(t, true, body["ok"])

	out, err = run(t, srv, "", "sum", "2", "3")
	require.NoError(t, err)
	require.Equal(t, "5\n", out)

	before := srv.RequestCount()
	_, err = run(t, srv, "", "sum", "x", "3")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, before, srv.RequestCount())
}

func TestAuthFlow(t *testing.T) {
	cfgDir := withTmpConfig(t)
	srv := apitest.New(t)
	srv.RequireAuth = true

	out, err := run(t, srv, "", "register", "--email", "a@b.c", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "registered a@b.c")

	_, err = run(t, srv, "", "register", "--email", "a@b.c", "--password", "pw")
	require.ErrorContains(t, err, "Registration failed")

	_, err = run(t, srv, "", "whoami")
	require.ErrorIs(t, err, errs.ErrAuth)

	_, err = run(t, srv, "wrong\n", "login", "--email", "a@b.c")
	require.ErrorIs(t, err, errs.ErrAuth)
	require.ErrorContains(t, err, "Login failed")

	out, err = run(t, srv, "a@b.c\npw\n", "login")
	require.NoError(t, err)
	require.Equal(t, "logged in\n", out)

	sess, err := session.New(session.NewFileStore(cfgDir))
	require.NoError(t, err)
	require.True(t, sess.Authenticated())

	out, err = run(t, srv, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "a@b.c (id 1, active true)")
	require.Contains(t, out, "token expires ")

	_, err = run(t, srv, "", "notes", "add", "--title", "private")
	require.NoError(t, err)

	out, err = run(t, srv, "", "logout")
	require.NoError(t, err)
	require.Equal(t, "logged out\n", out)

	_, err = run(t, srv, "", "notes", "list")
	require.ErrorIs(t, err, errs.ErrAuth)
	require.ErrorContains(t, err, "Failed to load notes")
}

func TestNotesLifecycle_Recreate(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	srv.DisablePut = true

	out, err := run(t, srv, "", "notes", "add", "--title", "first", "--content", "one")
	require.NoError(t, err)
	require.Equal(t, "created 1\n", out)

	_, err = run(t, srv, "", "notes", "add", "-t", "second", "-c", "two")
	require.NoError(t, err)

	out, err = run(t, srv, "", "notes", "list")
	require.NoError(t, err)
	require.Contains(t, out, "TITLE")
	require.Contains(t, out, "first")
	require.Contains(t, out, "two")

	out, err = run(t, srv, "", "notes", "edit", "1", "--content", "changed")
	require.NoError(t, err)
	require.Equal(t, "updated 1 -> 3\n", out)

	out, err = run(t, srv, "", "notes", "list", "--json")
	require.NoError(t, err)
	var notes []model.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 2)
	byID := map[int64]model.Note{}
	for _, n := range notes {
		byID[n.ID] = n
	}
	require.NotContains(t, byID, int64(1))
	require.Equal(t, "first", byID[3].Title)
	require.Equal(t, "changed", byID[3].Content)

	out, err = run(t, srv, "", "notes", "rm", "2")
	require.NoError(t, err)
	require.Equal(t, "deleted 2\n", out)
	require.Len(t, srv.Notes(), 1)

	_, err = run(t, srv, "", "notes", "rm", "2")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorContains(t, err, "Failed to delete note")
}

func TestNotesEdit_Replace(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	n := srv.Seed("title", "body")

	out, err := run(t, srv, "", "--update-strategy", "replace", "notes", "edit", "1", "--title", "renamed")
	require.NoError(t, err)
	require.Equal(t, "updated 1 -> 1\n", out)

	stored := srv.Notes()
	require.Len(t, stored, 1)
	require.Equal(t, n.ID, stored[0].ID)
	require.Equal(t, "renamed", stored[0].Title)
	require.Equal(t, "body", stored[0].Body)

	_, err = run(t, srv, "", "notes", "edit", "99", "--title", "x")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = run(t, srv, "", "notes", "edit", "abc")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestNotesShow(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	srv.Seed("one", "first body")

	out, err := run(t, srv, "", "notes", "show", "1")
	require.NoError(t, err)
	var n model.Note
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	require.Equal(t, int64(1), n.ID)
	require.Equal(t, "first body", n.Content)

	_, err = run(t, srv, "", "notes", "show", "7")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestNotesAdd_EmptyMakesNoRequest(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)

	_, err := run(t, srv, "", "notes", "add", "--title", " ")
	require.ErrorIs(t, err, errs.ErrEmptyNote)
	require.Zero(t, srv.RequestCount())
}

func TestNotesAdd_ServerError(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	srv.FailNext(http.MethodPost, "/notes", http.StatusInternalServerError)

	_, err := run(t, srv, "", "notes", "add", "--title", "t")
	require.ErrorIs(t, err, errs.ErrNetwork)
	require.ErrorContains(t, err, "Failed to save note")
	require.Empty(t, srv.Notes())
}

func TestConfigFileAndEnv(t *testing.T) {
	cfgDir := withTmpConfig(t)
	srv := apitest.New(t)
	srv.Seed("from file", "")

	require.NoError(t, os.MkdirAll(cfgDir, 0o700))
	cfg := "base_url: " + srv.URL() + "\nupdate_strategy: replace\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0o600))

	out, err := run(t, nil, "", "notes", "list")
	require.NoError(t, err)
	require.Contains(t, out, "from file")

	t.Setenv("NOTEKEEPER_API_URL", "http://127.0.0.1:1")
	_, err = run(t, nil, "", "notes", "list")
	require.ErrorIs(t, err, errs.ErrNetwork, "env overrides the file")

	out, err = run(t, srv, "", "notes", "list")
	require.NoError(t, err, "flag overrides env")
	require.Contains(t, out, "from file")
}

func TestShell(t *testing.T) {
	withTmpConfig(t)
	srv := apitest.New(t)
	srv.DisablePut = true
	srv.Seed("seed", "s")

	script := strings.Join([]string{
		"save",
		"title hello",
		"content world",
		"save",
		"edit 1",
		"content edited",
		"save",
		"show",
		"rm 42",
		"sum 1.5 2.25",
		"sum x 1",
		"bogus",
		"quit",
	}, "\n")
	out, err := run(t, srv, script, "shell")
	require.NoError(t, err)

	require.Contains(t, out, "error: validation error: title and content are empty")
	require.Contains(t, out, "created 2")
	require.Contains(t, out, "editing 1")
	require.Contains(t, out, "updated 1 -> 3")
	require.Contains(t, out, "form (new note, submit_succeeded)")
	require.Contains(t, out, "error: Failed to delete note")
	require.Contains(t, out, "3.75")
	require.Contains(t, out, `unknown command "bogus"`)

	stored := srv.Notes()
	require.Len(t, stored, 2)
	require.Equal(t, "hello", stored[0].Title)
	require.Equal(t, "edited", stored[1].Body)
}
