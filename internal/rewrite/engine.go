// Package rewrite applies one asset update to the markup files on disk as a
// minimal, exact-match text substitution.
package rewrite

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/assetbump/assetbump/pkg/assets"
	"github.com/assetbump/assetbump/pkg/cdn"
	"github.com/assetbump/assetbump/pkg/logger"
	"github.com/assetbump/assetbump/pkg/safeio"
)

// Result reports which files an update touched and the lexically lowest
// version string that was replaced, used for commit-message generation.
// The comparison is plain string ordering, not semantic versioning.
type Result struct {
	ModifiedPaths []string
	LowestVersion string
}

// Apply rewrites every occurrence of the asset in every affected file.
//
// A reference is replaced only when the latest file listing contains a file
// with the same name AND the file's current text still contains the
// reference's exact original URL. The URL is substituted first; the original
// integrity value, when present, is substituted with the new one (or removed
// to an empty string when the new file carries none). A file is written back
// only if at least one substitution occurred, so a no-op leaves it
// byte-identical.
func Apply(perFile map[string][]assets.AssetReference, update assets.AssetVersion, latestFiles []cdn.File) (Result, error) {
	byName := make(map[string]cdn.File, len(latestFiles))
	for _, file := range latestFiles {
		byName[file.Name] = file
	}

	paths := make([]string, 0, len(perFile))
	for path := range perFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := Result{}

	for _, path := range paths {
		raw, err := os.ReadFile(path) // #nosec G304 -- paths come from the repository scan
		if err != nil {
			return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		content := string(raw)
		dirty := false

		for _, ref := range perFile[path] {
			if ref.CDN != update.CDN || ref.Name != update.Name || ref.Version == update.Version {
				continue
			}
			latest, ok := byName[ref.FileName]
			if !ok {
				continue
			}
			if !strings.Contains(content, ref.URL) {
				continue
			}

			content = strings.Replace(content, ref.URL, latest.URL, 1)
			if ref.Integrity != "" {
				content = strings.Replace(content, ref.Integrity, latest.Integrity, 1)
			}
			dirty = true

			if result.LowestVersion == "" || ref.Version < result.LowestVersion {
				result.LowestVersion = ref.Version
			}
		}

		if dirty {
			if err := safeio.WriteFilePreservePerms(path, []byte(content)); err != nil {
				return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
			}
			result.ModifiedPaths = append(result.ModifiedPaths, path)
			logger.Debug(fmt.Sprintf("Updated %s to %s in %s", update.Name, update.Version, path))
		}
	}

	return result, nil
}
