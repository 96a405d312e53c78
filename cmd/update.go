package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/assetbump/assetbump/internal/forge"
	"github.com/assetbump/assetbump/internal/gitops"
	"github.com/assetbump/assetbump/internal/updater"
	"github.com/assetbump/assetbump/pkg/assets"
	"github.com/assetbump/assetbump/pkg/cdn"
	"github.com/assetbump/assetbump/pkg/config"
	"github.com/assetbump/assetbump/pkg/logger"
	"github.com/assetbump/assetbump/pkg/safeio"
)

func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update CDN-hosted static assets and open pull requests",
		Long: `Scan the repository for markup files referencing CDN-hosted assets,
resolve the latest published version of each asset, rewrite the markup to
point at it, and open one pull request per updated asset. Stale open pull
requests for the same asset are commented on, closed, and their branches
deleted.`,
		RunE: runUpdate,
	}

	cmd.Flags().String("repo-token", "", "Access token for the forge API (defaults to GITHUB_TOKEN)")
	cmd.Flags().String("repo", "", "Repository to push to as owner/name (defaults to GITHUB_REPOSITORY)")
	cmd.Flags().String("repo-path", ".", "Path of the repository working tree to scan")
	cmd.Flags().String("branch-name-prefix", "", "Prefix for update branch names (default \""+updater.DefaultBranchPrefix+"\")")
	cmd.Flags().String("commit-message", "", "Override the generated commit message")
	cmd.Flags().String("user-name", "", "Git committer name to configure")
	cmd.Flags().String("user-email", "", "Git committer email to configure")
	cmd.Flags().StringSlice("labels", []string{}, "Labels to apply to created pull requests")
	cmd.Flags().StringSlice("file-extensions", []string{"cshtml", "html", "razor"}, "Markup file extensions to scan")
	cmd.Flags().Bool("dry-run", false, "Compute and apply updates locally without pushing or opening pull requests")
	cmd.Flags().Bool("close-superseded", true, "Close open pull requests superseded by a new update")
	cmd.Flags().String("configuration-file", "", "Path of the configuration file (default {repo-path}/"+config.DefaultFileName+")")
	cmd.Flags().String("output", "text", "Result output format (text|json)")

	return cmd
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	token := stringFlagOrEnv(cmd, "repo-token", "GITHUB_TOKEN")
	repo := stringFlagOrEnv(cmd, "repo", "GITHUB_REPOSITORY")
	repoPathFlag, _ := cmd.Flags().GetString("repo-path")
	branchPrefix, _ := cmd.Flags().GetString("branch-name-prefix")
	commitMessage, _ := cmd.Flags().GetString("commit-message")
	userName, _ := cmd.Flags().GetString("user-name")
	userEmail, _ := cmd.Flags().GetString("user-email")
	labels, _ := cmd.Flags().GetStringSlice("labels")
	fileExtensions, _ := cmd.Flags().GetStringSlice("file-extensions")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	closeSuperseded, _ := cmd.Flags().GetBool("close-superseded")
	configFile, _ := cmd.Flags().GetString("configuration-file")
	outputFormat, _ := cmd.Flags().GetString("output")

	repoPath, err := safeio.CleanUserPath(repoPathFlag)
	if err != nil {
		return fmt.Errorf("invalid repo-path: %w", err)
	}

	if configFile == "" {
		configFile = filepath.Join(repoPath, config.DefaultFileName)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	var forgeClient forge.Client
	if !dryRun {
		if token == "" {
			return fmt.Errorf("a repository token is required (set --repo-token or GITHUB_TOKEN)")
		}
		if repo == "" {
			return fmt.Errorf("a repository is required (set --repo or GITHUB_REPOSITORY)")
		}
		forgeClient, err = forge.NewGitHub(token, os.Getenv("GITHUB_API_URL"), repo)
		if err != nil {
			return err
		}
	}

	options := updater.Options{
		RepoPath:        repoPath,
		Repo:            repo,
		ServerURL:       os.Getenv("GITHUB_SERVER_URL"),
		RunRepo:         os.Getenv("GITHUB_REPOSITORY"),
		RunID:           os.Getenv("GITHUB_RUN_ID"),
		BranchPrefix:    branchPrefix,
		CommitMessage:   commitMessage,
		UserName:        userName,
		UserEmail:       userEmail,
		Labels:          labels,
		FileExtensions:  fileExtensions,
		Ignore:          cfg.Ignore,
		DryRun:          dryRun,
		CloseSuperseded: closeSuperseded,
	}

	u := updater.New(options, cdn.DefaultClients(), gitops.New(repoPath), forgeClient)

	result, err := u.Run(cmd.Context())
	if err != nil {
		logger.Error("Failed to check for updates to static assets", logger.Err(err))
		return err
	}

	return writeResult(cmd, result, outputFormat)
}

func stringFlagOrEnv(cmd *cobra.Command, flag, env string) string {
	if value, _ := cmd.Flags().GetString(flag); value != "" {
		return value
	}
	return os.Getenv(env)
}

// writeResult reports the run outputs: logged always, appended to the
// GITHUB_OUTPUT file when running inside a workflow, and printed as JSON
// when requested.
func writeResult(cmd *cobra.Command, result assets.UpdateResult, format string) error {
	opened, _ := json.Marshal(result.PullsOpened())
	closed, _ := json.Marshal(result.PullsClosed())

	logger.Info(fmt.Sprintf("Assets updated: %t", result.AssetsUpdated()))
	logger.Info("Pulls opened: " + string(opened))
	logger.Info("Pulls closed: " + string(closed))

	if outputPath := os.Getenv("GITHUB_OUTPUT"); outputPath != "" {
		lines := fmt.Sprintf("assets-updated=%t\npulls-opened=%s\npulls-closed=%s\n",
			result.AssetsUpdated(), opened, closed)
		file, err := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- workflow-provided output file
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", outputPath, err)
		}
		if _, err := file.WriteString(lines); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to write run outputs: %w", err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to write run outputs: %w", err)
		}
	}

	if format == "json" {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(encoded))
	}

	return nil
}
