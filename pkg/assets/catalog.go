package assets

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/assetbump/assetbump/pkg/cdn"
	"github.com/assetbump/assetbump/pkg/ignore"
	"github.com/assetbump/assetbump/pkg/logger"
)

// resolveConcurrency bounds parallel latest-version lookups. Lookups are
// read-only, so the catalog phase may fan out safely.
const resolveConcurrency = 4

// Catalog aggregates the asset references observed across all scanned files.
type Catalog struct {
	// Updates holds the distinct assets with at least one observed version
	// differing from the resolved latest version, in first-seen order.
	Updates []Asset

	// LatestVersions maps Asset.Key() to the resolved latest version for
	// assets that have one and are not suppressed by an ignore rule.
	LatestVersions map[string]string

	// Versions maps Asset.Key() to the distinct observed versions.
	Versions map[string][]AssetVersion
}

// BuildCatalog deduplicates the per-file references, resolves the latest
// published version of each distinct asset exactly once, applies the ignore
// policy, and computes the update set. A package missing from its CDN is
// "nothing to update"; any other backend failure aborts the build.
func BuildCatalog(ctx context.Context, perFile map[string][]AssetReference, clients map[cdn.Provider]cdn.Client, rules ignore.Rules) (*Catalog, error) {
	paths := make([]string, 0, len(perFile))
	for path := range perFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Distinct assets, first file / first reference wins.
	var distinct []Asset
	seen := make(map[string]bool)
	for _, path := range paths {
		for _, ref := range perFile[path] {
			if !seen[ref.Key()] {
				seen[ref.Key()] = true
				distinct = append(distinct, ref.Asset)
			}
		}
	}

	logger.Debug(fmt.Sprintf("Found %d unique assets that may need updating", len(distinct)))
	for _, asset := range distinct {
		logger.Debug(fmt.Sprintf("  - %s from %s", asset.Name, asset.CDN))
	}

	// Distinct observed versions per asset.
	versions := make(map[string][]AssetVersion)
	for _, path := range paths {
		for _, ref := range perFile[path] {
			key := ref.Key()
			known := false
			for _, v := range versions[key] {
				if v.Version == ref.Version {
					known = true
					break
				}
			}
			if !known {
				versions[key] = append(versions[key], ref.AssetVersion)
			}
		}
	}

	// Latest version per asset, one lookup each.
	latest := make(map[string]string)
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(resolveConcurrency)

	for _, asset := range distinct {
		asset := asset
		client := clients[asset.CDN]
		if client == nil {
			continue
		}
		group.Go(func() error {
			version, err := client.LatestVersion(groupCtx, asset.Name)
			if err != nil {
				if cdn.IsNotFound(err) {
					logger.Debug(fmt.Sprintf("%s not found on %s", asset.Name, asset.CDN))
					return nil
				}
				return err
			}
			if rules.Match(string(asset.CDN), asset.Name, version) {
				logger.Debug(fmt.Sprintf("Ignoring version %s of %s from %s", version, asset.Name, asset.CDN))
				return nil
			}
			mu.Lock()
			latest[asset.Key()] = version
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Found %d latest versions for assets", len(latest)))

	// Update set: assets with an observed version differing from latest.
	var updates []Asset
	for _, asset := range distinct {
		key := asset.Key()
		latestVersion, ok := latest[key]
		if !ok {
			continue
		}
		for _, observed := range versions[key] {
			if observed.Version != latestVersion {
				updates = append(updates, asset)
				break
			}
		}
	}

	logger.Info(fmt.Sprintf("Found %d assets to update", len(updates)))

	return &Catalog{
		Updates:        updates,
		LatestVersions: latest,
		Versions:       versions,
	}, nil
}
