// Package updater sequences one update cycle per distinct CDN asset:
// rewrite, branch, commit, push, pull request, supersession.
package updater

import (
	"context"
	"fmt"
	"strings"

	"github.com/assetbump/assetbump/internal/forge"
	"github.com/assetbump/assetbump/internal/gitops"
	"github.com/assetbump/assetbump/internal/rewrite"
	"github.com/assetbump/assetbump/internal/scan"
	"github.com/assetbump/assetbump/pkg/assets"
	"github.com/assetbump/assetbump/pkg/cdn"
	"github.com/assetbump/assetbump/pkg/ignore"
	"github.com/assetbump/assetbump/pkg/logger"
)

// DefaultBranchPrefix names update branches when no prefix is configured.
const DefaultBranchPrefix = "update-static-assets"

// Options configures one update run.
type Options struct {
	RepoPath        string
	Repo            string // "owner/name"; empty disables remote wiring and push
	ServerURL       string
	RunRepo         string
	RunID           string
	BranchPrefix    string
	CommitMessage   string
	UserName        string
	UserEmail       string
	Labels          []string
	FileExtensions  []string
	Ignore          ignore.Rules
	DryRun          bool
	CloseSuperseded bool
}

// Updater runs the asset-update state machine. The per-asset loop is strictly
// sequential: the working tree is a single shared mutable resource.
type Updater struct {
	options Options
	clients map[cdn.Provider]cdn.Client
	source  gitops.SourceControl
	forge   forge.Client
	scanner *scan.Scanner
}

// New creates an Updater over the given collaborators.
func New(options Options, clients map[cdn.Provider]cdn.Client, source gitops.SourceControl, forgeClient forge.Client) *Updater {
	return &Updater{
		options: options,
		clients: clients,
		source:  source,
		forge:   forgeClient,
		scanner: scan.NewScanner(options.RepoPath, options.FileExtensions),
	}
}

// Run scans the repository, resolves latest versions, and attempts one update
// per asset that is behind. Per-asset no-ops (no distributable files, no
// textual occurrences, branch already proposed) skip the asset; git and forge
// failures abort the run. Already-pushed updates are not rolled back.
func (u *Updater) Run(ctx context.Context) (assets.UpdateResult, error) {
	result := assets.UpdateResult{Updates: []assets.AssetUpdate{}}

	perFile, err := u.scanner.Scan()
	if err != nil {
		return result, err
	}

	catalog, err := assets.BuildCatalog(ctx, perFile, u.clients, u.options.Ignore)
	if err != nil {
		return result, err
	}

	if len(catalog.Updates) == 0 {
		return result, nil
	}

	baseBranch, err := u.source.CurrentBranch()
	if err != nil {
		return result, err
	}

	updatesAttempted := 0
	for _, asset := range catalog.Updates {
		if updatesAttempted > 0 {
			// Reset to the base branch before the next asset.
			if err := u.source.Checkout(baseBranch, true); err != nil {
				return result, err
			}
		}

		update, err := u.updateAsset(ctx, asset, baseBranch, catalog, perFile)
		if err != nil {
			return result, err
		}
		if update != nil {
			result.Updates = append(result.Updates, *update)
		}

		updatesAttempted++
	}

	return result, nil
}

func (u *Updater) updateAsset(ctx context.Context, asset assets.Asset, baseBranch string, catalog *assets.Catalog, perFile map[string][]assets.AssetReference) (*assets.AssetUpdate, error) {
	client := u.clients[asset.CDN]
	if client == nil {
		return nil, nil
	}

	version, ok := catalog.LatestVersions[asset.Key()]
	if !ok {
		return nil, nil
	}

	latestFiles, err := client.Files(ctx, asset.Name, version)
	if err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("Found %d files for %s@%s from %s", len(latestFiles), asset.Name, version, asset.CDN))
	if len(latestFiles) < 1 {
		return nil, nil
	}

	updated := assets.AssetVersion{Asset: asset, Version: version}

	headBranch, err := u.applyAssetUpdate(updated, perFile, latestFiles)
	if err != nil {
		return nil, err
	}
	if headBranch == "" {
		return nil, nil
	}

	pull, supersedes, err := u.createPullRequest(ctx, baseBranch, headBranch, updated, client)
	if err != nil {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("Created pull request for update to %s@%s", updated.Name, updated.Version))
	logger.Debug(fmt.Sprintf("  - #%d", pull.Number))
	logger.Debug(fmt.Sprintf("  - %s", pull.URL))

	return &assets.AssetUpdate{
		AssetVersion:      updated,
		PullRequestNumber: pull.Number,
		PullRequestURL:    pull.URL,
		Supersedes:        supersedes,
	}, nil
}

// applyAssetUpdate rewrites the files on disk and commits them to a new
// branch. It returns "" when the asset turned out to be a no-op: nothing was
// rewritten, or the branch for this exact update already exists remotely.
func (u *Updater) applyAssetUpdate(updated assets.AssetVersion, perFile map[string][]assets.AssetReference, latestFiles []cdn.File) (string, error) {
	logger.Info(fmt.Sprintf("Updating %s to %s...", updated.Name, updated.Version))

	rewritten, err := rewrite.Apply(perFile, updated, latestFiles)
	if err != nil {
		return "", err
	}
	if len(rewritten.ModifiedPaths) < 1 {
		return "", nil
	}

	logger.Info(fmt.Sprintf("Updated %s version to %s", updated.Name, updated.Version))

	branchPrefix := u.options.BranchPrefix
	if branchPrefix == "" {
		branchPrefix = DefaultBranchPrefix
	}
	branch := strings.ToLower(fmt.Sprintf("%s/%s/%s", branchPrefix, updated.Name, updated.Version))

	commitMessage := u.options.CommitMessage
	if commitMessage == "" {
		commitMessage = GenerateCommitMessage(updated.Name, rewritten.LowestVersion, updated.Version)
	}

	if err := u.source.SetUser(u.options.UserName, u.options.UserEmail); err != nil {
		return "", err
	}

	if u.options.Repo != "" {
		remoteURL := fmt.Sprintf("%s/%s.git", u.serverURL(), u.options.Repo)
		if err := u.source.SetRemoteURL(remoteURL); err != nil {
			return "", err
		}
		u.source.Fetch("origin")
	}

	logger.Debug("Branch: " + branch)
	logger.Debug("Commit message: " + commitMessage)

	exists, err := u.source.RemoteBranchExists(branch)
	if err != nil {
		return "", err
	}
	if exists {
		logger.Info(fmt.Sprintf("The %s branch already exists", branch))
		return "", nil
	}

	if err := u.source.CreateBranch(branch); err != nil {
		return "", err
	}
	logger.Info("Created git branch " + branch)

	if err := u.source.StageAll(); err != nil {
		return "", err
	}
	logger.Info(fmt.Sprintf("Staged git commit for '%s' update", updated.Name))

	if err := u.source.Commit(commitMessage); err != nil {
		return "", err
	}
	if sha, err := u.source.HeadShortSHA(); err == nil {
		logger.Info(fmt.Sprintf("Committed %s update to git (%s)", updated.Name, sha))
	}

	if !u.options.DryRun && u.options.Repo != "" {
		if err := u.source.Push(branch); err != nil {
			return "", err
		}
		logger.Info(fmt.Sprintf("Pushed changes to repository (%s)", u.options.Repo))
	}

	return branch, nil
}

func (u *Updater) createPullRequest(ctx context.Context, base, head string, updated assets.AssetVersion, client cdn.Client) (forge.PullRequest, []int, error) {
	title := fmt.Sprintf("Update %s to %s", updated.Name, updated.Version)
	body := fmt.Sprintf("Updates %s to version `%s`.", updated.Name, updated.Version)

	if notes := client.ReleaseNotesURL(ctx, updated.Name, updated.Version); notes != "" {
		body += fmt.Sprintf("\n\nRelease notes: %s.", notes)
	}

	if u.options.RunRepo != "" && u.options.RunID != "" {
		body += fmt.Sprintf(
			"\n\nThis pull request was auto-generated by [GitHub Actions](%s/%s/actions/runs/%s).",
			u.serverURL(), u.options.RunRepo, u.options.RunID,
		)
	}

	if u.options.DryRun {
		logger.Info(fmt.Sprintf("Skipped creating pull request for branch %s to %s", head, base))
		return forge.PullRequest{}, nil, nil
	}

	created, err := u.forge.CreatePullRequest(ctx, forge.NewPullRequest{
		Title:               title,
		Head:                head,
		Base:                base,
		Body:                body,
		MaintainerCanModify: true,
		Draft:               false,
	})
	if err != nil {
		return forge.PullRequest{}, nil, err
	}

	logger.Info(fmt.Sprintf("Created pull request #%d: %s", created.Number, created.Title))
	logger.Info("View the pull request at " + created.URL)

	if len(u.options.Labels) > 0 {
		// Labeling is best-effort: the pull request already exists.
		if err := u.forge.AddLabels(ctx, created.Number, u.options.Labels); err != nil {
			logger.Error(fmt.Sprintf("Failed to apply label(s) to pull request #%d", created.Number), logger.Err(err))
		}
	}

	var supersedes []int
	if u.options.CloseSuperseded {
		supersedes, err = u.closeSuperseded(ctx, base, updated, created)
		if err != nil {
			return forge.PullRequest{}, nil, err
		}
	}

	return created, supersedes, nil
}

// closeSuperseded closes every still-open pull request for the same asset by
// the same author, oldest first, and returns their numbers in closing order.
func (u *Updater) closeSuperseded(ctx context.Context, base string, updated assets.AssetVersion, created forge.PullRequest) ([]int, error) {
	pulls, err := u.forge.ListOpenPullRequests(ctx, base)
	if err != nil {
		return nil, err
	}

	titlePrefix := fmt.Sprintf("Update %s to ", updated.Name)

	var matching []forge.PullRequest
	for _, pull := range pulls {
		if pull.Author == created.Author && strings.HasPrefix(pull.Title, titlePrefix) {
			matching = append(matching, pull)
		}
	}
	if len(matching) < 2 {
		return nil, nil
	}

	var superseded []forge.PullRequest
	for _, pull := range matching {
		if pull.Number != created.Number {
			superseded = append(superseded, pull)
		}
	}
	// The listing is newest first; close oldest first.
	for i, j := 0, len(superseded)-1; i < j; i, j = i+1, j-1 {
		superseded[i], superseded[j] = superseded[j], superseded[i]
	}

	comment := fmt.Sprintf("Superseded by #%d.", created.Number)
	supersedes := make([]int, 0, len(superseded))

	for _, pull := range superseded {
		logger.Debug(fmt.Sprintf("Closing pull request #%d", pull.Number))

		if err := u.forge.CreateComment(ctx, pull.Number, comment); err != nil {
			return nil, err
		}
		if err := u.forge.ClosePullRequest(ctx, pull.Number); err != nil {
			return nil, err
		}
		if err := u.forge.DeleteBranch(ctx, pull.HeadRef); err != nil {
			return nil, err
		}
		supersedes = append(supersedes, pull.Number)
	}

	return supersedes, nil
}

func (u *Updater) serverURL() string {
	if u.options.ServerURL != "" {
		return strings.TrimSuffix(u.options.ServerURL, "/")
	}
	return "https://github.com"
}
