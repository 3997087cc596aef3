package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator computes star and commit totals over a set of confirmed repositories.
type Aggregator struct {
	fetcher     gateway.Fetcher
	user        string
	concurrency int
	logger      zerolog.Logger
}

// NewAggregator creates a new Aggregator counting commits authored by user.
func NewAggregator(fetcher gateway.Fetcher, user string, concurrency int, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		user:        user,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// TotalStars sums the stargazer counts of all repositories.
func TotalStars(repos []domain.Repository) int {
	total := 0
	for _, repo := range repos {
		total += repo.Stars
	}
	return total
}

// AverageStars returns the mean stargazer count per repository rounded to one decimal.
// An empty set averages to zero.
func AverageStars(repos []domain.Repository) float64 {
	data := make(stats.Float64Data, 0, len(repos))
	for _, repo := range repos {
		data = append(data, float64(repo.Stars))
	}
	mean, err := data.Mean()
	if errors.Is(err, stats.EmptyInputErr) {
		return 0
	}
	rounded, _ := stats.Round(mean, 1)
	return rounded
}

// CountRepositories returns the number of repositories and how many of them are public.
func CountRepositories(repos []domain.Repository) (total, public int) {
	for _, repo := range repos {
		if !repo.Private {
			public++
		}
	}
	return len(repos), public
}

// TotalCommits sums the commits authored by the aggregator's user across repos.
//
// With a zero cutoff the lifetime total of each repository is used. Otherwise only
// weekly buckets starting strictly after cutoff are counted, and repositories not
// updated since cutoff are skipped without querying their statistics.
// Failures for a single repository contribute zero and never abort the sum.
func (a *Aggregator) TotalCommits(ctx context.Context, repos []domain.Repository, cutoff time.Time) int {
	a.logger.Info().Int("repositories", len(repos)).Msg("[2/3] Fetching contributor statistics...")

	contributions := make([]int, len(repos))
	var eg errgroup.Group
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		if !cutoff.IsZero() && !repo.UpdatedAt.After(cutoff) {
			a.logger.Debug().Str("repository", repo.FullName()).Msg("not updated since cutoff, skipping")
			continue
		}
		i, repo := i, repo
		eg.Go(func() error {
			contributions[i] = a.repositoryCommits(ctx, repo, cutoff)
			return nil
		})
	}
	_ = eg.Wait()

	total := 0
	for _, c := range contributions {
		total += c
	}
	a.logger.Info().Int("commits", total).Msg("Completed aggregating commits.")
	return total
}

func (a *Aggregator) repositoryCommits(ctx context.Context, repo domain.Repository, cutoff time.Time) int {
	logger := a.logger.With().Str("repository", repo.FullName()).Logger()

	result, err := a.fetcher.GetContributorStats(ctx, repo.Owner, repo.Name)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch contributor stats, counting zero commits")
		return 0
	}
	if result.Status != domain.StatsReady {
		logger.Warn().Stringer("status", result.Status).Msg("contributor stats unavailable, counting zero commits")
		return 0
	}

	contributor, ok := findContributor(result.Contributors, a.user)
	if !ok {
		logger.Warn().Str("user", a.user).Msg("user not found among contributors, counting zero commits")
		return 0
	}
	if cutoff.IsZero() {
		return contributor.Total
	}
	return commitsAfter(contributor.Weeks, cutoff)
}

func findContributor(contributors []domain.ContributorStats, login string) (domain.ContributorStats, bool) {
	for _, c := range contributors {
		if strings.EqualFold(c.Login, login) {
			return c, true
		}
	}
	return domain.ContributorStats{}, false
}

// commitsAfter counts whole weeks only: a week starting on or before cutoff is
// excluded even if most of it falls after cutoff.
func commitsAfter(weeks []domain.WeeklyCommits, cutoff time.Time) int {
	total := 0
	for _, week := range weeks {
		if week.WeekStart.After(cutoff) {
			total += week.Commits
		}
	}
	return total
}
