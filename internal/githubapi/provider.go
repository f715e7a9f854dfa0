package githubapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	tracerName = "github.com/huangsam/githours/internal/githubapi"
	perPage    = 100
)

// Provider implements contract.CommitProvider on top of the GitHub REST API.
// Repository handles look like "owner/name".
type Provider struct {
	client  *github.Client
	limiter *rate.Limiter
	window  contract.Window
}

var _ contract.CommitProvider = &Provider{} // Compile-time check

// NewProvider builds a provider from the GitHub settings of a run.
func NewProvider(cfg contract.GitHubConfig, window contract.Window) (*Provider, error) {
	httpClient, err := NewHTTPClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	token := cfg.Token
	if cfg.UsesApp() {
		token = ""
	}
	client, err := NewRESTClient(httpClient, token, cfg.APIURL)
	if err != nil {
		return nil, err
	}
	return NewProviderWithClient(client, cfg.RateLimit, window), nil
}

// NewProviderWithClient wraps an existing client. A non-positive rate means
// contract.DefaultGitHubRateLimit requests per second.
func NewProviderWithClient(client *github.Client, requestsPerSecond float64, window contract.Window) *Provider {
	if requestsPerSecond <= 0 {
		requestsPerSecond = contract.DefaultGitHubRateLimit
	}
	return &Provider{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		window:  window,
	}
}

// Name implements the CommitProvider interface.
func (p *Provider) Name() string {
	return string(schema.GitHubProvider)
}

// SplitHandle parses "owner/name" into its parts.
func SplitHandle(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.Trim(strings.TrimSpace(repo), "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: github repository must be owner/name, got %q", contract.ErrNotARepository, repo)
	}
	return owner, strings.TrimSuffix(name, ".git"), nil
}

// RepoState implements the CommitProvider interface.
// It hashes the head of every branch so that a push anywhere changes it.
func (p *Provider) RepoState(ctx context.Context, repo string) (string, error) {
	owner, name, err := SplitHandle(repo)
	if err != nil {
		return "", err
	}
	branches, err := p.listBranches(ctx, owner, name)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, b := range branches {
		_, _ = fmt.Fprintf(h, "%s %s\n", b.GetCommit().GetSHA(), b.GetName())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ListCommits implements the CommitProvider interface.
// With no branches every branch is read and commits are deduplicated by id.
// Otherwise commits reachable from several requested branches are merged into
// one entry whose Branches lists them in request order.
func (p *Provider) ListCommits(ctx context.Context, repo string, branches []string) ([]schema.RawCommit, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "githubapi.ListCommits",
		trace.WithAttributes(attribute.String("repo", repo), attribute.Int("branches", len(branches))))
	defer span.End()

	commits, err := p.listCommits(ctx, repo, branches)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("commits", len(commits)))
	return commits, nil
}

func (p *Provider) listCommits(ctx context.Context, repo string, branches []string) ([]schema.RawCommit, error) {
	owner, name, err := SplitHandle(repo)
	if err != nil {
		return nil, err
	}

	tagBranches := len(branches) > 0
	if !tagBranches {
		all, err := p.listBranches(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		for _, b := range all {
			branches = append(branches, b.GetName())
		}
	} else if err := p.checkRepo(ctx, owner, name); err != nil {
		return nil, err
	}

	var commits []schema.RawCommit
	seen := make(map[string]int)
	for _, branch := range branches {
		page, err := p.listBranchCommits(ctx, owner, name, branch)
		if err != nil {
			return nil, err
		}
		for _, raw := range page {
			if idx, ok := seen[raw.ID]; ok {
				if tagBranches {
					commits[idx].Branches = append(commits[idx].Branches, branch)
				}
				continue
			}
			if tagBranches {
				raw.Branches = []string{branch}
			}
			seen[raw.ID] = len(commits)
			commits = append(commits, raw)
		}
	}

	contract.Logger().Debug("listed github commits",
		zap.String("repo", repo),
		zap.Int("branches", len(branches)),
		zap.Int("commits", len(commits)))
	return commits, nil
}

// checkRepo maps a missing repository to ErrNotARepository.
func (p *Provider) checkRepo(ctx context.Context, owner, name string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	_, resp, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return wrapRepoError(owner, name, resp, err)
	}
	logRateLimit(resp)
	return nil
}

// listBranches returns every branch sorted by name.
func (p *Provider) listBranches(ctx context.Context, owner, name string) ([]*github.Branch, error) {
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: perPage}}

	var all []*github.Branch
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		branches, resp, err := p.client.Repositories.ListBranches(ctx, owner, name, opts)
		if err != nil {
			return nil, wrapRepoError(owner, name, resp, err)
		}
		all = append(all, branches...)
		logRateLimit(resp)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	sort.Slice(all, func(i, j int) bool { return all[i].GetName() < all[j].GetName() })
	return all, nil
}

// listBranchCommits pages through the commits reachable from one branch.
func (p *Provider) listBranchCommits(ctx context.Context, owner, name, branch string) ([]schema.RawCommit, error) {
	opts := &github.CommitsListOptions{
		SHA:         branch,
		Since:       p.window.Since,
		Until:       p.window.Until,
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var out []schema.RawCommit
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		commits, resp, err := p.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			if isStatus(resp, http.StatusNotFound, http.StatusUnprocessableEntity) {
				return nil, fmt.Errorf("%w: %q in %q", contract.ErrUnknownBranch, branch, owner+"/"+name)
			}
			return nil, fmt.Errorf("list commits of %s/%s@%s: %w", owner, name, branch, err)
		}
		for _, c := range commits {
			out = append(out, toRawCommit(c))
		}
		logRateLimit(resp)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// toRawCommit keeps the git author identity and the committer time, which is
// what the local provider reads as well.
func toRawCommit(c *github.RepositoryCommit) schema.RawCommit {
	gc := c.GetCommit()
	raw := schema.RawCommit{
		ID:          c.GetSHA(),
		AuthorName:  gc.GetAuthor().GetName(),
		AuthorEmail: gc.GetAuthor().GetEmail(),
		CommittedAt: gc.GetCommitter().GetDate().Unix(),
		Message:     gc.GetMessage(),
	}
	for _, parent := range c.Parents {
		raw.Parents = append(raw.Parents, parent.GetSHA())
	}
	return raw
}

func wrapRepoError(owner, name string, resp *github.Response, err error) error {
	if isStatus(resp, http.StatusNotFound) {
		return fmt.Errorf("%w: %q", contract.ErrNotARepository, owner+"/"+name)
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("github rate limit exceeded until %s: %w", rateErr.Rate.Reset.Time.Format(contract.DateTimeFormat), err)
	}
	return fmt.Errorf("github request for %s/%s failed: %w", owner, name, err)
}

func isStatus(resp *github.Response, statuses ...int) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	for _, code := range statuses {
		if resp.StatusCode == code {
			return true
		}
	}
	return false
}

func logRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}
	contract.Logger().Debug("github rate limit",
		zap.Int("remaining", resp.Rate.Remaining),
		zap.Int("limit", resp.Rate.Limit))
}
