package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	g := New(dir)

	for _, args := range [][]string{
		{"init", "--initial-branch=main"},
		{"config", "user.name", "tester"},
		{"config", "user.email", "tester@example.com"},
	} {
		_, err := g.run(args...)
		require.NoError(t, err)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, g.StageAll())
	require.NoError(t, g.Commit("initial commit"))

	return g
}

func TestCurrentBranch(t *testing.T) {
	g := initRepo(t)

	branch, err := g.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestCreateBranchAndCommit(t *testing.T) {
	g := initRepo(t)

	require.NoError(t, g.CreateBranch("update-static-assets/jquery/3.7.1"))

	branch, err := g.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "update-static-assets/jquery/3.7.1", branch)

	require.NoError(t, os.WriteFile(filepath.Join(g.dir, "index.html"), []byte("<html>v2</html>"), 0o644))
	require.NoError(t, g.StageAll())
	require.NoError(t, g.Commit("Update jquery\n\nUpdates jquery to version 3.7.1."))

	sha, err := g.HeadShortSHA()
	require.NoError(t, err)
	assert.Len(t, sha, 7)
}

func TestCheckout(t *testing.T) {
	g := initRepo(t)
	require.NoError(t, g.CreateBranch("other"))

	require.NoError(t, g.Checkout("main", false))

	branch, err := g.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	// A bad ref fails loudly unless errors are ignored.
	assert.Error(t, g.Checkout("does-not-exist", false))
	assert.NoError(t, g.Checkout("does-not-exist", true))
}

func TestSetUser(t *testing.T) {
	g := initRepo(t)

	require.NoError(t, g.SetUser("updater[bot]", "updater@example.com"))

	name, err := g.run("config", "user.name")
	require.NoError(t, err)
	assert.Equal(t, "updater[bot]", name)

	// Empty values leave the existing configuration alone.
	require.NoError(t, g.SetUser("", ""))
	name, err = g.run("config", "user.name")
	require.NoError(t, err)
	assert.Equal(t, "updater[bot]", name)
}

func TestRemoteBranchExists_NoRemote(t *testing.T) {
	g := initRepo(t)

	exists, err := g.RemoteBranchExists("update-static-assets/jquery/3.7.1")
	require.NoError(t, err)
	assert.False(t, exists)
}
