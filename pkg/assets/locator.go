package assets

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/assetbump/assetbump/pkg/cdn"
)

// Locate parses one markup document and extracts every CDN-backed asset
// reference from <script src> and <link rel="stylesheet" href> elements.
// Every other element, and every URL from an unrecognized origin, is skipped
// silently. Content that fails to parse contributes zero references.
func Locate(content string) []AssetReference {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var references []AssetReference
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script":
				if ref, ok := referenceFromElement(node, "src"); ok {
					references = append(references, ref)
				}
			case "link":
				if attr(node, "rel") == "stylesheet" {
					if ref, ok := referenceFromElement(node, "href"); ok {
						references = append(references, ref)
					}
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return references
}

// attr returns the value of the named attribute, or "".
func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func referenceFromElement(node *html.Node, urlAttr string) (AssetReference, bool) {
	assetURL := attr(node, urlAttr)
	if assetURL == "" {
		return AssetReference{}, false
	}

	provider, ok := cdn.ProviderForURL(assetURL)
	if !ok {
		return AssetReference{}, false
	}

	return extractReference(provider, assetURL, attr(node, "integrity"))
}

// extractReference pulls (name, version, file name) out of the URL path
// according to the provider's canonical URL shape. URLs that do not match the
// shape are not assets.
func extractReference(provider cdn.Provider, assetURL, integrity string) (AssetReference, bool) {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return AssetReference{}, false
	}

	segments := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")

	switch provider {
	case cdn.Cdnjs:
		// /ajax/libs/{name}/{version}/{file...}
		if len(segments) < 4 {
			return AssetReference{}, false
		}
		return AssetReference{
			AssetVersion: AssetVersion{
				Asset:   Asset{CDN: provider, Name: segments[2]},
				Version: segments[3],
			},
			URL:       assetURL,
			Integrity: integrity,
			FileName:  strings.Join(segments[4:], "/"),
		}, true

	case cdn.JSDelivr:
		// /npm/{name}@{version}/{file...}
		if len(segments) < 2 {
			return AssetReference{}, false
		}
		fileName := "/" + strings.Join(segments[2:], "/")
		nameVersion := strings.Split(segments[1], "@")
		if len(nameVersion) != 2 {
			return AssetReference{}, false
		}
		return AssetReference{
			AssetVersion: AssetVersion{
				Asset:   Asset{CDN: provider, Name: nameVersion[0]},
				Version: nameVersion[1],
			},
			URL:       assetURL,
			Integrity: integrity,
			FileName:  fileName,
		}, true

	default:
		return AssetReference{}, false
	}
}
