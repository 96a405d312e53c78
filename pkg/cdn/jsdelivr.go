package cdn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// JSDelivrClient implements Client for the jsDelivr data API over npm packages.
// See https://github.com/jsdelivr/data.jsdelivr.com
type JSDelivrClient struct {
	apiURL      string
	registryURL string
	downloadURL string
	fetcher     HTTPFetcher
}

// NewJSDelivrClient creates a jsDelivr client with an injectable HTTP fetcher.
func NewJSDelivrClient(fetcher HTTPFetcher) *JSDelivrClient {
	return &JSDelivrClient{
		apiURL:      "https://data.jsdelivr.com/v1",
		registryURL: "https://registry.npmjs.org",
		downloadURL: "https://cdn.jsdelivr.net/npm",
		fetcher:     fetcher,
	}
}

func (c *JSDelivrClient) Provider() Provider {
	return JSDelivr
}

// LatestVersion resolves the version behind the npm "latest" dist-tag.
func (c *JSDelivrClient) LatestVersion(ctx context.Context, name string) (string, error) {
	lookupURL := fmt.Sprintf("%s/package/npm/%s", c.apiURL, url.PathEscape(name))

	var pkg struct {
		Tags struct {
			Latest string `json:"latest"`
		} `json:"tags"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &pkg)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s on jsDelivr", ErrNotFound, name)
	}
	if status >= 400 {
		return "", &UpstreamError{Provider: JSDelivr, URL: lookupURL, StatusCode: status}
	}

	return pkg.Tags.Latest, nil
}

// Files lists the flattened file tree of a package version.
// jsDelivr file names carry a leading slash, which the download URL keeps.
func (c *JSDelivrClient) Files(ctx context.Context, name, version string) ([]File, error) {
	encodedName := url.PathEscape(name)
	encodedVersion := url.PathEscape(version)
	lookupURL := fmt.Sprintf("%s/package/npm/%s@%s/flat", c.apiURL, encodedName, encodedVersion)

	var listing struct {
		Files []struct {
			Name string `json:"name"`
			Hash string `json:"hash"`
		} `json:"files"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &listing)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []File{}, nil
	}
	if status >= 400 {
		return nil, &UpstreamError{Provider: JSDelivr, URL: lookupURL, StatusCode: status}
	}

	files := make([]File, 0, len(listing.Files))
	for _, file := range listing.Files {
		files = append(files, File{
			URL:       fmt.Sprintf("%s/%s@%s%s", c.downloadURL, encodedName, encodedVersion, file.Name),
			Name:      file.Name,
			Integrity: "sha256-" + file.Hash,
		})
	}

	return files, nil
}

// ReleaseNotesURL probes the npm registry metadata for a repository and a
// matching release tag.
func (c *JSDelivrClient) ReleaseNotesURL(ctx context.Context, name, version string) string {
	lookupURL := fmt.Sprintf("%s/%s", c.registryURL, url.PathEscape(name))

	var pkg struct {
		Repository struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"repository"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &pkg)
	if err != nil || status != http.StatusOK {
		return ""
	}
	if pkg.Repository.Type != "" && pkg.Repository.Type != "git" {
		return ""
	}

	return probeReleaseNotes(ctx, c.fetcher, pkg.Repository.URL, version)
}
