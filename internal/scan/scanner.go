// Package scan discovers markup files in a repository tree and extracts the
// CDN asset references they contain.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/assetbump/assetbump/pkg/assets"
	"github.com/assetbump/assetbump/pkg/logger"
	"github.com/assetbump/assetbump/pkg/safeio"
)

// Scanner finds files matching the configured markup extensions under a
// repository root, honouring the repository's gitignore patterns.
type Scanner struct {
	root     string
	patterns []string
	matcher  gitignore.Matcher
}

// NewScanner creates a scanner rooted at the repository path. Extensions are
// bare suffixes ("html", "cshtml") expanded to recursive glob patterns.
func NewScanner(root string, extensions []string) *Scanner {
	patterns := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		extension = strings.TrimSpace(strings.TrimPrefix(extension, "."))
		if extension == "" {
			continue
		}
		patterns = append(patterns, "**/*."+extension)
	}

	// Always-ignored trees, layered under the repo's own gitignore files.
	var allPatterns []gitignore.Pattern
	for _, pattern := range []string{".git/**", "node_modules/**", "vendor/**"} {
		allPatterns = append(allPatterns, gitignore.ParsePattern(pattern, nil))
	}
	if gitPatterns, err := gitignore.ReadPatterns(osfs.New(root), nil); err == nil {
		allPatterns = append(allPatterns, gitPatterns...)
	}

	return &Scanner{
		root:     root,
		patterns: patterns,
		matcher:  gitignore.NewMatcher(allPatterns),
	}
}

// FindFiles returns the sorted paths of candidate markup files, relative to
// the scanner root joined back onto it.
func (s *Scanner) FindFiles() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		parts := strings.Split(rel, "/")

		if entry.IsDir() {
			if s.matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.matcher.Match(parts, false) {
			return nil
		}

		for _, pattern := range s.patterns {
			if ok, matchErr := doublestar.Match(pattern, rel); matchErr == nil && ok {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Scan locates the asset references in every candidate file. Files that
// cannot be read or parsed contribute zero references and are logged at
// debug level, never fatal.
func (s *Scanner) Scan() (map[string][]assets.AssetReference, error) {
	paths, err := s.FindFiles()
	if err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Found %d files to search for assets", len(paths)))
	for _, path := range paths {
		logger.Debug("  - " + path)
	}

	perFile := make(map[string][]assets.AssetReference)
	for _, path := range paths {
		content, readErr := safeio.ReadFileContained(s.root, path)
		if readErr != nil {
			logger.Debug(fmt.Sprintf("Failed to find assets in '%s'", path), logger.Err(readErr))
			continue
		}
		references := assets.Locate(string(content))
		if len(references) > 0 {
			perFile[path] = references
		}
	}

	logger.Debug(fmt.Sprintf("Found %d files with assets that may need updating", len(perFile)))
	for path, references := range perFile {
		logger.Debug(fmt.Sprintf("  - '%s':", path))
		for _, ref := range references {
			logger.Debug(fmt.Sprintf("    - %s@%s from %s", ref.Name, ref.Version, ref.CDN))
		}
	}

	return perFile, nil
}
