package cdn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CdnjsClient implements Client for the cdnjs API.
// See https://cdnjs.com/api
type CdnjsClient struct {
	apiURL      string
	downloadURL string
	fetcher     HTTPFetcher
}

// NewCdnjsClient creates a cdnjs client with an injectable HTTP fetcher.
func NewCdnjsClient(fetcher HTTPFetcher) *CdnjsClient {
	return &CdnjsClient{
		apiURL:      "https://api.cdnjs.com",
		downloadURL: "https://cdnjs.cloudflare.com/ajax/libs",
		fetcher:     fetcher,
	}
}

func (c *CdnjsClient) Provider() Provider {
	return Cdnjs
}

// LatestVersion resolves the latest published version of a library.
// See https://cdnjs.com/api#library
func (c *CdnjsClient) LatestVersion(ctx context.Context, name string) (string, error) {
	lookupURL := fmt.Sprintf("%s/libraries/%s?fields=name,version", c.apiURL, url.PathEscape(name))

	var library struct {
		Version string `json:"version"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &library)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s on cdnjs", ErrNotFound, name)
	}
	if status >= 400 {
		return "", &UpstreamError{Provider: Cdnjs, URL: lookupURL, StatusCode: status}
	}

	return library.Version, nil
}

// Files lists the distributable files of a library version.
// See https://cdnjs.com/api#version
func (c *CdnjsClient) Files(ctx context.Context, name, version string) ([]File, error) {
	encodedName := url.PathEscape(name)
	encodedVersion := url.PathEscape(version)
	lookupURL := fmt.Sprintf("%s/libraries/%s/%s", c.apiURL, encodedName, encodedVersion)

	var listing struct {
		Files []string          `json:"files"`
		SRI   map[string]string `json:"sri"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &listing)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []File{}, nil
	}
	if status >= 400 {
		return nil, &UpstreamError{Provider: Cdnjs, URL: lookupURL, StatusCode: status}
	}

	files := make([]File, 0, len(listing.Files))
	for _, file := range listing.Files {
		files = append(files, File{
			URL:       fmt.Sprintf("%s/%s/%s/%s", c.downloadURL, encodedName, encodedVersion, file),
			Name:      file,
			Integrity: listing.SRI[file],
		})
	}

	return files, nil
}

// ReleaseNotesURL probes the library's declared repository for a release tag.
func (c *CdnjsClient) ReleaseNotesURL(ctx context.Context, name, version string) string {
	lookupURL := fmt.Sprintf("%s/libraries/%s?fields=repository", c.apiURL, url.PathEscape(name))

	var library struct {
		Repository struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"repository"`
	}

	status, err := getJSON(ctx, c.fetcher, lookupURL, &library)
	if err != nil || status != http.StatusOK {
		return ""
	}
	if library.Repository.Type != "" && library.Repository.Type != "git" {
		return ""
	}

	return probeReleaseNotes(ctx, c.fetcher, library.Repository.URL, version)
}
