package cdn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client resolves the latest published version and the distributable file
// listing of a package hosted on one CDN backend.
//
// LatestVersion returns ErrNotFound when the package is absent from the CDN
// and an *UpstreamError for any other failure status. Files returns an empty
// slice when the version has no distributable files or is unknown. Download
// URLs are constructed deterministically from (name, version, file name) so
// identical inputs always yield the identical URL string.
type Client interface {
	Provider() Provider
	LatestVersion(ctx context.Context, name string) (string, error)
	Files(ctx context.Context, name, version string) ([]File, error)

	// ReleaseNotesURL resolves a human-readable release page for the given
	// version by inspecting the package's source-repository metadata.
	// A missing repository or tag yields "", never an error.
	ReleaseNotesURL(ctx context.Context, name, version string) string
}

// ForProvider creates the client variant for the given provider.
// Unknown providers return nil.
func ForProvider(provider Provider, fetcher HTTPFetcher) Client {
	switch provider {
	case Cdnjs:
		return NewCdnjsClient(fetcher)
	case JSDelivr:
		return NewJSDelivrClient(fetcher)
	default:
		return nil
	}
}

// DefaultClients returns one client per supported provider, sharing a
// production HTTP fetcher.
func DefaultClients() map[Provider]Client {
	fetcher := NewDefaultFetcher()
	return map[Provider]Client{
		Cdnjs:    NewCdnjsClient(fetcher),
		JSDelivr: NewJSDelivrClient(fetcher),
	}
}

// getJSON issues a GET with context and decodes the response body into out.
// The caller interprets status codes; getJSON only decodes on 200.
func getJSON(ctx context.Context, fetcher HTTPFetcher, url string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "assetbump")
	req.Header.Set("Accept", "application/json")

	resp, err := fetcher.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return resp.StatusCode, nil
}
