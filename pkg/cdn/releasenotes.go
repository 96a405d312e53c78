package cdn

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// normalizeGitHubRepo reduces a repository URL from package metadata to an
// "owner/repo" pair. Non-GitHub repositories return ok=false.
func normalizeGitHubRepo(repoURL string) (string, bool) {
	repo := strings.TrimSpace(repoURL)
	repo = strings.TrimPrefix(repo, "git+")
	repo = strings.TrimPrefix(repo, "git://")
	repo = strings.TrimPrefix(repo, "https://")
	repo = strings.TrimPrefix(repo, "http://")
	repo = strings.TrimPrefix(repo, "www.")
	repo = strings.TrimSuffix(repo, "/")
	repo = strings.TrimSuffix(repo, ".git")

	if !strings.HasPrefix(repo, "github.com/") {
		return "", false
	}
	repo = strings.TrimPrefix(repo, "github.com/")

	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return repo, true
}

// probeReleaseNotes looks for a hosted release page matching the version,
// trying the "v"-prefixed tag first and the bare version second.
// Any miss or transport failure yields "".
func probeReleaseNotes(ctx context.Context, fetcher HTTPFetcher, repoURL, version string) string {
	repo, ok := normalizeGitHubRepo(repoURL)
	if !ok {
		return ""
	}

	for _, tag := range []string{"v" + version, version} {
		pageURL := fmt.Sprintf("https://github.com/%s/releases/tag/%s", repo, tag)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return ""
		}
		req.Header.Set("User-Agent", "assetbump")

		resp, err := fetcher.Do(req)
		if err != nil {
			return ""
		}
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return pageURL
		}
	}

	return ""
}
