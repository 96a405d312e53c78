package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetbump/assetbump/pkg/assets"
	"github.com/assetbump/assetbump/pkg/cdn"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFixture(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func cdnjsRef(name, version, fileName, integrity string) assets.AssetReference {
	return assets.AssetReference{
		AssetVersion: assets.AssetVersion{
			Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: name},
			Version: version,
		},
		URL:       "https://cdnjs.cloudflare.com/ajax/libs/" + name + "/" + version + "/" + fileName,
		Integrity: integrity,
		FileName:  fileName,
	}
}

func TestApply_ReplacesURLAndIntegrity(t *testing.T) {
	dir := t.TempDir()
	content := `<html><head>
<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.6.0/jquery.min.js"
        integrity="sha512-old"
        crossorigin="anonymous"></script>
</head></html>`
	path := writeFixture(t, dir, "index.html", content)

	perFile := map[string][]assets.AssetReference{
		path: {cdnjsRef("jquery", "3.6.0", "jquery.min.js", "sha512-old")},
	}
	update := assets.AssetVersion{
		Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: "jquery"},
		Version: "3.7.1",
	}
	latest := []cdn.File{{
		URL:       "https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js",
		Name:      "jquery.min.js",
		Integrity: "sha512-new",
	}}

	result, err := Apply(perFile, update, latest)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, result.ModifiedPaths)
	assert.Equal(t, "3.6.0", result.LowestVersion)

	rewritten := readFixture(t, path)
	assert.Contains(t, rewritten, "ajax/libs/jquery/3.7.1/jquery.min.js")
	assert.Contains(t, rewritten, `integrity="sha512-new"`)
	assert.NotContains(t, rewritten, "3.6.0")
	assert.NotContains(t, rewritten, "sha512-old")
	// Surrounding markup is untouched.
	assert.Contains(t, rewritten, `crossorigin="anonymous"`)
}

func TestApply_SkipsFileMissingFromLatestListing(t *testing.T) {
	dir := t.TempDir()
	content := `<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.6.0/jquery.slim.min.js"></script>`
	path := writeFixture(t, dir, "index.html", content)

	perFile := map[string][]assets.AssetReference{
		path: {cdnjsRef("jquery", "3.6.0", "jquery.slim.min.js", "")},
	}
	update := assets.AssetVersion{
		Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: "jquery"},
		Version: "3.7.1",
	}
	latest := []cdn.File{{
		URL:  "https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js",
		Name: "jquery.min.js",
	}}

	result, err := Apply(perFile, update, latest)
	require.NoError(t, err)
	assert.Empty(t, result.ModifiedPaths)
	assert.Equal(t, content, readFixture(t, path))
}

func TestApply_IgnoresOtherAssets(t *testing.T) {
	dir := t.TempDir()
	content := `<script src="https://cdnjs.cloudflare.com/ajax/libs/lodash.js/4.17.21/lodash.min.js"></script>`
	path := writeFixture(t, dir, "index.html", content)

	perFile := map[string][]assets.AssetReference{
		path: {cdnjsRef("lodash.js", "4.17.21", "lodash.min.js", "")},
	}
	update := assets.AssetVersion{
		Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: "jquery"},
		Version: "3.7.1",
	}

	result, err := Apply(perFile, update, nil)
	require.NoError(t, err)
	assert.Empty(t, result.ModifiedPaths)
}

func TestApply_LowestVersionAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFixture(t, dir, "a.html",
		`<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.6.0/jquery.min.js"></script>`)
	pathB := writeFixture(t, dir, "b.html",
		`<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.5.0/jquery.min.js"></script>`)

	perFile := map[string][]assets.AssetReference{
		pathA: {cdnjsRef("jquery", "3.6.0", "jquery.min.js", "")},
		pathB: {cdnjsRef("jquery", "3.5.0", "jquery.min.js", "")},
	}
	update := assets.AssetVersion{
		Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: "jquery"},
		Version: "3.7.1",
	}
	latest := []cdn.File{{
		URL:  "https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js",
		Name: "jquery.min.js",
	}}

	result, err := Apply(perFile, update, latest)
	require.NoError(t, err)
	assert.Equal(t, []string{pathA, pathB}, result.ModifiedPaths)
	assert.Equal(t, "3.5.0", result.LowestVersion)
}

func TestApply_AlreadyAtTargetVersionIsNoOp(t *testing.T) {
	dir := t.TempDir()
	content := `<script src="https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js"></script>`
	path := writeFixture(t, dir, "index.html", content)

	perFile := map[string][]assets.AssetReference{
		path: {cdnjsRef("jquery", "3.7.1", "jquery.min.js", "")},
	}
	update := assets.AssetVersion{
		Asset:   assets.Asset{CDN: cdn.Cdnjs, Name: "jquery"},
		Version: "3.7.1",
	}
	latest := []cdn.File{{
		URL:  "https://cdnjs.cloudflare.com/ajax/libs/jquery/3.7.1/jquery.min.js",
		Name: "jquery.min.js",
	}}

	result, err := Apply(perFile, update, latest)
	require.NoError(t, err)
	assert.Empty(t, result.ModifiedPaths)
}
