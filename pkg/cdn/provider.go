// Package cdn resolves published package versions and file listings from
// public content-delivery networks.
package cdn

import "strings"

// Provider identifies a supported CDN backend.
type Provider string

const (
	Cdnjs    Provider = "cdnjs"
	JSDelivr Provider = "jsdelivr"
)

// originPrefixes maps the canonical URL origin of each CDN to its provider.
var originPrefixes = map[string]Provider{
	"https://cdnjs.cloudflare.com": Cdnjs,
	"https://cdn.jsdelivr.net":     JSDelivr,
}

// ProviderForURL returns the provider serving the given asset URL.
// URLs from unrecognized origins return ok=false and are not an error.
func ProviderForURL(url string) (Provider, bool) {
	for prefix, provider := range originPrefixes {
		if strings.HasPrefix(url, prefix) {
			return provider, true
		}
	}
	return "", false
}

// File is one distributable file belonging to a published package version.
type File struct {
	URL       string
	Name      string
	Integrity string
}
