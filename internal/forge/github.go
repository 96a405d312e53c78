package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"
)

// githubAPI narrows *github.Client to the calls the updater makes, so tests
// can fake the forge without a network.
type githubAPI interface {
	CreatePull(ctx context.Context, owner, repo string, pull *github.NewPullRequest) (*github.PullRequest, *github.Response, error)
	AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error)
	ListPulls(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
	CreateIssueComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	EditPull(ctx context.Context, owner, repo string, number int, pull *github.PullRequest) (*github.PullRequest, *github.Response, error)
	DeleteRef(ctx context.Context, owner, repo, ref string) (*github.Response, error)
}

type restAPI struct {
	client *github.Client
}

func (a restAPI) CreatePull(ctx context.Context, owner, repo string, pull *github.NewPullRequest) (*github.PullRequest, *github.Response, error) {
	return a.client.PullRequests.Create(ctx, owner, repo, pull)
}

func (a restAPI) AddLabelsToIssue(ctx context.Context, owner, repo string, number int, labels []string) ([]*github.Label, *github.Response, error) {
	return a.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
}

func (a restAPI) ListPulls(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error) {
	return a.client.PullRequests.List(ctx, owner, repo, opts)
}

func (a restAPI) CreateIssueComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	return a.client.Issues.CreateComment(ctx, owner, repo, number, comment)
}

func (a restAPI) EditPull(ctx context.Context, owner, repo string, number int, pull *github.PullRequest) (*github.PullRequest, *github.Response, error) {
	return a.client.PullRequests.Edit(ctx, owner, repo, number, pull)
}

func (a restAPI) DeleteRef(ctx context.Context, owner, repo, ref string) (*github.Response, error) {
	return a.client.Git.DeleteRef(ctx, owner, repo, ref)
}

// GitHub implements Client against the GitHub REST API.
type GitHub struct {
	api   githubAPI
	owner string
	repo  string
}

// NewGitHub creates a GitHub forge client for "owner/repo". A non-empty
// apiURL points the client at a GitHub Enterprise instance.
func NewGitHub(token, apiURL, ownerRepo string) (*GitHub, error) {
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q (expected owner/repo)", ownerRepo)
	}

	client := github.NewClient(nil).WithAuthToken(token)
	if apiURL != "" && apiURL != "https://api.github.com" {
		enterprise, err := client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
		}
		client = enterprise
	}

	return &GitHub{api: restAPI{client: client}, owner: owner, repo: repo}, nil
}

func (g *GitHub) CreatePullRequest(ctx context.Context, pull NewPullRequest) (PullRequest, error) {
	created, _, err := g.api.CreatePull(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title:               github.String(pull.Title),
		Head:                github.String(pull.Head),
		Base:                github.String(pull.Base),
		Body:                github.String(pull.Body),
		MaintainerCanModify: github.Bool(pull.MaintainerCanModify),
		Draft:               github.Bool(pull.Draft),
	})
	if err != nil {
		return PullRequest{}, fmt.Errorf("failed to create pull request: %w", err)
	}
	return asPullRequest(created), nil
}

func (g *GitHub) AddLabels(ctx context.Context, number int, labels []string) error {
	if _, _, err := g.api.AddLabelsToIssue(ctx, g.owner, g.repo, number, labels); err != nil {
		return fmt.Errorf("failed to add labels to pull request #%d: %w", number, err)
	}
	return nil
}

func (g *GitHub) ListOpenPullRequests(ctx context.Context, base string) ([]PullRequest, error) {
	opts := &github.PullRequestListOptions{
		Base:      base,
		State:     "open",
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var pulls []PullRequest
	for {
		page, resp, err := g.api.ListPulls(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list open pull requests: %w", err)
		}
		for _, pull := range page {
			pulls = append(pulls, asPullRequest(pull))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return pulls, nil
}

func (g *GitHub) CreateComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	if _, _, err := g.api.CreateIssueComment(ctx, g.owner, g.repo, number, comment); err != nil {
		return fmt.Errorf("failed to comment on pull request #%d: %w", number, err)
	}
	return nil
}

func (g *GitHub) ClosePullRequest(ctx context.Context, number int) error {
	edit := &github.PullRequest{State: github.String("closed")}
	if _, _, err := g.api.EditPull(ctx, g.owner, g.repo, number, edit); err != nil {
		return fmt.Errorf("failed to close pull request #%d: %w", number, err)
	}
	return nil
}

func (g *GitHub) DeleteBranch(ctx context.Context, branch string) error {
	if _, err := g.api.DeleteRef(ctx, g.owner, g.repo, "heads/"+branch); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branch, err)
	}
	return nil
}

func asPullRequest(pull *github.PullRequest) PullRequest {
	return PullRequest{
		Number:  pull.GetNumber(),
		URL:     pull.GetHTMLURL(),
		Title:   pull.GetTitle(),
		Author:  pull.GetUser().GetLogin(),
		HeadRef: pull.GetHead().GetRef(),
	}
}
