// Package assets models CDN-backed static assets discovered in markup files
// and builds the per-run catalog of assets that need updating.
package assets

import (
	"fmt"

	"github.com/assetbump/assetbump/pkg/cdn"
)

// Asset is the identity of one package from one CDN. Two Asset values with
// equal provider and name are the same asset everywhere in a run.
type Asset struct {
	CDN  cdn.Provider
	Name string
}

// Key returns the catalog map key for the asset.
func (a Asset) Key() string {
	return fmt.Sprintf("%s-%s", a.CDN, a.Name)
}

// AssetVersion is one observed or resolved version of an asset.
type AssetVersion struct {
	Asset
	Version string
}

// AssetReference is one occurrence of a CDN asset inside one file, with
// enough structure to locate and replace it losslessly.
type AssetReference struct {
	AssetVersion
	URL       string
	Integrity string
	FileName  string
}

// AssetUpdate records one successfully proposed update.
type AssetUpdate struct {
	AssetVersion
	PullRequestNumber int
	PullRequestURL    string
	Supersedes        []int
}

// UpdateResult is the ordered outcome of one run, one entry per asset that
// was updated and had a pull request created.
type UpdateResult struct {
	Updates []AssetUpdate `json:"updates"`
}

// AssetsUpdated reports whether any asset was updated.
func (r UpdateResult) AssetsUpdated() bool {
	return len(r.Updates) > 0
}

// PullsOpened returns the pull request numbers opened by the run, in order.
func (r UpdateResult) PullsOpened() []int {
	numbers := make([]int, 0, len(r.Updates))
	for _, update := range r.Updates {
		numbers = append(numbers, update.PullRequestNumber)
	}
	return numbers
}

// PullsClosed returns the superseded pull request numbers closed by the run,
// flattened in closing order.
func (r UpdateResult) PullsClosed() []int {
	numbers := make([]int, 0)
	for _, update := range r.Updates {
		numbers = append(numbers, update.Supersedes...)
	}
	return numbers
}
