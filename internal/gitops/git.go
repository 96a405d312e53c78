// Package gitops wraps the version-control operations the update loop needs.
package gitops

import (
	"fmt"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/assetbump/assetbump/pkg/logger"
)

// SourceControl is the version-control collaborator of the orchestrator.
// Operations surface failure as an error unless documented otherwise; the
// working tree is a single shared resource and callers must serialize use.
type SourceControl interface {
	CurrentBranch() (string, error)
	Checkout(branch string, ignoreErrors bool) error
	CreateBranch(branch string) error
	SetUser(name, email string) error
	StageAll() error
	Commit(message string) error
	HeadShortSHA() (string, error)
	RemoteBranchExists(branch string) (bool, error)
	Push(branch string) error
	SetRemoteURL(remoteURL string) error
	// Fetch is best-effort; failures are logged and swallowed.
	Fetch(remote string)
}

// Git runs the git CLI against one working tree. Repository introspection
// prefers go-git, mutations go through the CLI.
type Git struct {
	dir string
}

// New creates a Git handle for the working tree at dir.
func New(dir string) *Git {
	return &Git{dir: dir}
}

func (g *Git) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("the command 'git %s' failed: %w: %s", strings.Join(args, " "), err, output)
	}
	logger.Trace("git "+strings.Join(args, " "), logger.String("output", output))
	return output, nil
}

// CurrentBranch returns the short name of the checked-out branch, preferring
// go-git and falling back to the CLI.
func (g *Git) CurrentBranch() (string, error) {
	if repo, err := git.PlainOpenWithOptions(g.dir, &git.PlainOpenOptions{DetectDotGit: true}); err == nil {
		if head, err := repo.Head(); err == nil {
			return head.Name().Short(), nil
		}
	}
	return g.run("rev-parse", "--abbrev-ref", "HEAD")
}

func (g *Git) Checkout(branch string, ignoreErrors bool) error {
	_, err := g.run("checkout", branch)
	if err != nil && ignoreErrors {
		logger.Debug("Ignoring checkout failure", logger.Err(err))
		return nil
	}
	return err
}

func (g *Git) CreateBranch(branch string) error {
	_, err := g.run("checkout", "-b", branch)
	return err
}

func (g *Git) SetUser(name, email string) error {
	if name != "" {
		if _, err := g.run("config", "user.name", name); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Updated git user name to '%s'", name))
	}
	if email != "" {
		if _, err := g.run("config", "user.email", email); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Updated git user email to '%s'", email))
	}
	return nil
}

func (g *Git) StageAll() error {
	_, err := g.run("add", ".")
	return err
}

func (g *Git) Commit(message string) error {
	_, err := g.run("commit", "-m", message)
	return err
}

// HeadShortSHA returns the abbreviated hash of the last commit.
func (g *Git) HeadShortSHA() (string, error) {
	sha, err := g.run("log", "--format=%H", "-n", "1")
	if err != nil {
		return "", err
	}
	if len(sha) > 7 {
		sha = sha[:7]
	}
	return sha, nil
}

// RemoteBranchExists probes for remotes/origin/{branch}. The probe itself
// never fails: a non-zero exit simply means the branch is absent.
func (g *Git) RemoteBranchExists(branch string) (bool, error) {
	out, err := g.run("rev-parse", "--verify", "--quiet", "remotes/origin/"+branch)
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(out) != "", nil
}

func (g *Git) Push(branch string) error {
	_, err := g.run("push", "-u", "origin", branch)
	return err
}

func (g *Git) SetRemoteURL(remoteURL string) error {
	_, err := g.run("remote", "set-url", "origin", remoteURL)
	return err
}

func (g *Git) Fetch(remote string) {
	if _, err := g.run("fetch", remote); err != nil {
		logger.Debug("Ignoring fetch failure", logger.Err(err))
	}
}
