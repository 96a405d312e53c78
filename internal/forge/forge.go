// Package forge abstracts the remote forge API used to manage pull requests.
package forge

import "context"

// PullRequest is the forge's view of one pull request.
type PullRequest struct {
	Number  int
	URL     string
	Title   string
	Author  string
	HeadRef string
}

// NewPullRequest describes a pull request to create.
type NewPullRequest struct {
	Title               string
	Head                string
	Base                string
	Body                string
	MaintainerCanModify bool
	Draft               bool
}

// Client is the forge collaborator of the orchestrator.
type Client interface {
	CreatePullRequest(ctx context.Context, pull NewPullRequest) (PullRequest, error)
	AddLabels(ctx context.Context, number int, labels []string) error
	ListOpenPullRequests(ctx context.Context, base string) ([]PullRequest, error)
	CreateComment(ctx context.Context, number int, body string) error
	ClosePullRequest(ctx context.Context, number int) error
	DeleteBranch(ctx context.Context, branch string) error
}
