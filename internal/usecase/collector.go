// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoValidRepositories is returned when no listed repository survives confirmation.
var ErrNoValidRepositories = errors.New("no valid repositories found")

// Collector obtains the authenticated user's repositories and keeps only
// those whose existence can be confirmed by a direct lookup.
type Collector struct {
	fetcher     gateway.Fetcher
	concurrency int
	logger      zerolog.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, concurrency int, logger zerolog.Logger) *Collector {
	return &Collector{
		fetcher:     fetcher,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// Collect lists repositories and re-confirms each one concurrently.
// Repositories that fail confirmation are dropped with a warning.
func (c *Collector) Collect(ctx context.Context) ([]domain.Repository, error) {
	c.logger.Info().Msg("[1/3] Fetching repositories...")
	listed, err := c.fetcher.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	listed = uniqueRepositories(listed)

	confirmed := make([]bool, len(listed))
	var eg errgroup.Group
	eg.SetLimit(c.concurrency)
	for i, repo := range listed {
		i, repo := i, repo
		eg.Go(func() error {
			if _, err := c.fetcher.GetRepository(ctx, repo.Owner, repo.Name); err != nil {
				c.logger.Warn().Err(err).Str("repository", repo.FullName()).Msg("repository could not be confirmed, skipping")
				return nil
			}
			confirmed[i] = true
			return nil
		})
	}
	// Per-repository failures are absorbed above, so Wait never reports an error.
	_ = eg.Wait()

	repos := make([]domain.Repository, 0, len(listed))
	for i, repo := range listed {
		if confirmed[i] {
			repos = append(repos, repo)
		}
	}
	if len(repos) == 0 {
		return nil, ErrNoValidRepositories
	}
	c.logger.Info().Int("listed", len(listed)).Int("confirmed", len(repos)).Msg("Completed fetching repositories.")
	return repos, nil
}

func uniqueRepositories(repos []domain.Repository) []domain.Repository {
	seen := make(map[string]struct{}, len(repos))
	unique := make([]domain.Repository, 0, len(repos))
	for _, repo := range repos {
		key := repo.FullName()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, repo)
	}
	return unique
}
