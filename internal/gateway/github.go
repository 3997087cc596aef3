// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/readme-stats/internal/domain"
)

// repositoriesPerPage is the size of the single page requested when listing repositories.
// Pagination is not followed.
const repositoriesPerPage = 100

// notFoundMessage prefixes the GraphQL error GitHub returns for an unknown or inaccessible repository.
const notFoundMessage = "Could not resolve to a Repository"

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	ListRepositories(ctx context.Context) ([]domain.Repository, error)
	GetRepository(ctx context.Context, owner, name string) (domain.Repository, error)
	GetContributorStats(ctx context.Context, owner, name string) (domain.ContributorStatsResult, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient     *github.Client
	graphqlClient  *githubv4.Client
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// A zero requestTimeout disables the per-call deadline.
func NewGitHubGateway(token string, requestTimeout time.Duration, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	restClient := github.NewClient(httpClient)
	restClient.UserAgent = "readme-stats"
	return &GitHubGateway{
		restClient:     restClient,
		graphqlClient:  githubv4.NewClient(httpClient),
		requestTimeout: requestTimeout,
		logger:         logger,
	}, nil
}

func (g *GitHubGateway) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.requestTimeout)
}

// ListRepositories returns the first page of repositories visible to the authenticated user.
func (g *GitHubGateway) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: repositoriesPerPage},
	}
	repos, resp, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories with REST API: %w", err)
	}
	if resp != nil && resp.NextPage != 0 {
		g.logger.Debug().Int("per_page", repositoriesPerPage).Msg("more repositories available, only the first page is used")
	}

	result := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, toRepository(repo))
	}
	return result, nil
}

// repositoryQuery looks a single repository up by owner and name.
type repositoryQuery struct {
	Repository struct {
		Name           string
		StargazerCount int
		UpdatedAt      githubv4.DateTime
		IsPrivate      bool
		Owner          struct {
			Login string
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// GetRepository confirms a repository exists with a GraphQL lookup by owner and name.
func (g *GitHubGateway) GetRepository(ctx context.Context, owner, name string) (domain.Repository, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	var q repositoryQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		if strings.Contains(err.Error(), notFoundMessage) {
			return domain.Repository{}, fmt.Errorf("%s/%s: %w", owner, name, domain.ErrRepositoryNotFound)
		}
		return domain.Repository{}, fmt.Errorf("failed to execute GraphQL query for repository %s/%s: %w", owner, name, err)
	}
	if q.Repository.Name == "" {
		return domain.Repository{}, fmt.Errorf("%s/%s: %w", owner, name, domain.ErrRepositoryNotFound)
	}
	return domain.Repository{
		Name:      q.Repository.Name,
		Owner:     q.Repository.Owner.Login,
		Stars:     q.Repository.StargazerCount,
		UpdatedAt: q.Repository.UpdatedAt.Time,
		Private:   q.Repository.IsPrivate,
	}, nil
}

// GetContributorStats fetches the per-contributor weekly commit statistics of a repository.
// GitHub answers 202 Accepted while the statistics are still being computed; this is
// reported as StatsPending rather than as an error.
func (g *GitHubGateway) GetContributorStats(ctx context.Context, owner, name string) (domain.ContributorStatsResult, error) {
	ctx, cancel := g.withDeadline(ctx)
	defer cancel()

	stats, resp, err := g.restClient.Repositories.ListContributorsStats(ctx, owner, name)
	if err != nil {
		var accepted *github.AcceptedError
		switch {
		case errors.As(err, &accepted):
			return domain.ContributorStatsResult{Status: domain.StatsPending}, nil
		case isNotFound(resp):
			return domain.ContributorStatsResult{Status: domain.StatsNotFound}, nil
		}
		return domain.ContributorStatsResult{}, fmt.Errorf("failed to get contributor stats for %s/%s: %w", owner, name, err)
	}

	contributors := make([]domain.ContributorStats, 0, len(stats))
	for _, s := range stats {
		weeks := make([]domain.WeeklyCommits, 0, len(s.Weeks))
		for _, w := range s.Weeks {
			weeks = append(weeks, domain.WeeklyCommits{
				WeekStart: w.GetWeek().Time,
				Commits:   w.GetCommits(),
			})
		}
		contributors = append(contributors, domain.ContributorStats{
			Login: s.GetAuthor().GetLogin(),
			Total: s.GetTotal(),
			Weeks: weeks,
		})
	}
	return domain.ContributorStatsResult{Status: domain.StatsReady, Contributors: contributors}, nil
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func toRepository(repo *github.Repository) domain.Repository {
	return domain.Repository{
		Name:      repo.GetName(),
		Owner:     repo.GetOwner().GetLogin(),
		Stars:     repo.GetStargazersCount(),
		UpdatedAt: repo.GetUpdatedAt().Time,
		Private:   repo.GetPrivate(),
	}
}
