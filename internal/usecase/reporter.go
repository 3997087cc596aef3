package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/rs/zerolog"
)

// Renderer writes the computed metrics to the output document.
type Renderer interface {
	Render(metrics domain.ReadmeMetrics) error
}

// Reporter sequences fetching, aggregation and rendering for a single run.
type Reporter struct {
	collector  *Collector
	aggregator *Aggregator
	renderer   Renderer
	allTime    bool
	logger     zerolog.Logger
}

// NewReporter creates a new Reporter. When allTime is set, commits are counted
// over the whole history instead of the trailing year.
func NewReporter(collector *Collector, aggregator *Aggregator, renderer Renderer, allTime bool, logger zerolog.Logger) *Reporter {
	return &Reporter{
		collector:  collector,
		aggregator: aggregator,
		renderer:   renderer,
		allTime:    allTime,
		logger:     logger,
	}
}

// Run performs the main business logic and returns the metrics that were rendered.
func (r *Reporter) Run(ctx context.Context, now time.Time) (domain.ReadmeMetrics, error) {
	repos, err := r.collector.Collect(ctx)
	if err != nil {
		return domain.ReadmeMetrics{}, fmt.Errorf("failed to collect repositories: %w", err)
	}

	var cutoff time.Time
	if !r.allTime {
		cutoff = now.AddDate(-1, 0, 0)
	}

	repoCount, publicRepos := CountRepositories(repos)
	metrics := domain.ReadmeMetrics{
		TotalStars:             TotalStars(repos),
		TotalCommitsInPastYear: r.aggregator.TotalCommits(ctx, repos, cutoff),
		RepoCount:              repoCount,
		PublicRepos:            publicRepos,
		AverageStars:           AverageStars(repos),
		Colors:                 domain.DefaultColors,
		GeneratedAt:            now,
	}

	r.logger.Info().Msg("[3/3] Rendering report...")
	if err := r.renderer.Render(metrics); err != nil {
		return domain.ReadmeMetrics{}, fmt.Errorf("failed to render report: %w", err)
	}
	r.logger.Info().
		Int("stars", metrics.TotalStars).
		Int("commits", metrics.TotalCommitsInPastYear).
		Int("repositories", metrics.RepoCount).
		Msg("Usecase: Report complete.")
	return metrics, nil
}
