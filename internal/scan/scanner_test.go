package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFindFiles_MatchesConfiguredExtensions(t *testing.T) {
	root := t.TempDir()
	index := writeFile(t, root, "index.html", "<html></html>")
	view := writeFile(t, root, "Views/Home/Index.cshtml", "<html></html>")
	writeFile(t, root, "app.js", "console.log(1);")
	writeFile(t, root, "README.md", "readme")

	scanner := NewScanner(root, []string{"html", "cshtml"})

	paths, err := scanner.FindFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{index, view}, paths)
}

func TestFindFiles_ExtensionLeadingDotAccepted(t *testing.T) {
	root := t.TempDir()
	index := writeFile(t, root, "index.html", "<html></html>")

	scanner := NewScanner(root, []string{".html", "", " "})

	paths, err := scanner.FindFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{index}, paths)
}

func TestFindFiles_SkipsIgnoredTrees(t *testing.T) {
	root := t.TempDir()
	index := writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "node_modules/pkg/index.html", "<html></html>")
	writeFile(t, root, "vendor/lib/page.html", "<html></html>")
	writeFile(t, root, ".git/page.html", "<html></html>")

	scanner := NewScanner(root, []string{"html"})

	paths, err := scanner.FindFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{index}, paths)
}

func TestFindFiles_HonoursGitignore(t *testing.T) {
	root := t.TempDir()
	index := writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "dist/bundle.html", "<html></html>")
	writeFile(t, root, ".gitignore", "dist/\n")

	scanner := NewScanner(root, []string{"html"})

	paths, err := scanner.FindFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{index}, paths)
}

func TestScan_CollectsReferencesPerFile(t *testing.T) {
	root := t.TempDir()
	withAssets := writeFile(t, root, "index.html",
		`<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.6.0/jquery.min.js"></script>`)
	writeFile(t, root, "plain.html", "<html><body>no assets here</body></html>")

	scanner := NewScanner(root, []string{"html"})

	perFile, err := scanner.Scan()
	require.NoError(t, err)

	// Files without references are omitted entirely.
	require.Len(t, perFile, 1)
	refs := perFile[withAssets]
	require.Len(t, refs, 1)
	assert.Equal(t, "jquery", refs[0].Name)
	assert.Equal(t, "3.6.0", refs[0].Version)
}

func TestScan_EmptyTree(t *testing.T) {
	scanner := NewScanner(t.TempDir(), []string{"html"})

	perFile, err := scanner.Scan()
	require.NoError(t, err)
	assert.Empty(t, perFile)
}
