package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	now          = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	oneYearAgo   = now.AddDate(-1, 0, 0)
	twoYearsAgo  = now.AddDate(-2, 0, 0)
	lastMonth    = now.AddDate(0, -1, 0)
	octocatStats = domain.ContributorStats{
		Login: "octocat",
		Total: 10,
		Weeks: []domain.WeeklyCommits{
			{WeekStart: twoYearsAgo, Commits: 4},
			{WeekStart: lastMonth, Commits: 6},
		},
	}
)

func TestTotalStars(t *testing.T) {
	assert.Equal(t, 0, TotalStars(nil))
	assert.Equal(t, 0, TotalStars([]domain.Repository{}))
	assert.Equal(t, 12, TotalStars([]domain.Repository{{Stars: 5}, {Stars: 0}, {Stars: 7}}))
}

func TestAverageStars(t *testing.T) {
	assert.Equal(t, 0.0, AverageStars(nil))
	assert.Equal(t, 4.0, AverageStars([]domain.Repository{{Stars: 5}, {Stars: 3}}))
	assert.Equal(t, 3.3, AverageStars([]domain.Repository{{Stars: 5}, {Stars: 5}, {Stars: 0}}))
}

func TestCountRepositories(t *testing.T) {
	total, public := CountRepositories([]domain.Repository{{Name: "a"}, {Name: "b", Private: true}, {Name: "c"}})
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, public)

	total, public = CountRepositories(nil)
	assert.Zero(t, total)
	assert.Zero(t, public)
}

// TestAggregator_TotalCommits uses a table-driven approach to test windowed commit accounting.
func TestAggregator_TotalCommits(t *testing.T) {
	recent := domain.Repository{Name: "a", Owner: "octocat", Stars: 5, UpdatedAt: now}

	testCases := []struct {
		name     string
		repos    []domain.Repository
		stats    map[string]domain.ContributorStatsResult
		errs     map[string]error
		cutoff   time.Time
		expected int
		warnings []string
	}{
		{
			name:     "cutoff - only weeks after the cutoff count",
			repos:    []domain.Repository{recent},
			stats:    map[string]domain.ContributorStatsResult{"a": ready(octocatStats)},
			cutoff:   oneYearAgo,
			expected: 6,
		},
		{
			name:     "no cutoff - lifetime total is used, not re-summed from weeks",
			repos:    []domain.Repository{recent},
			stats:    map[string]domain.ContributorStatsResult{"a": ready(domain.ContributorStats{Login: "octocat", Total: 10, Weeks: []domain.WeeklyCommits{{WeekStart: lastMonth, Commits: 1}}})},
			expected: 10,
		},
		{
			name:  "cutoff - week starting exactly at the cutoff never counts",
			repos: []domain.Repository{recent},
			stats: map[string]domain.ContributorStatsResult{"a": ready(domain.ContributorStats{Login: "octocat", Total: 100, Weeks: []domain.WeeklyCommits{
				{WeekStart: oneYearAgo, Commits: 50},
				{WeekStart: oneYearAgo.Add(time.Second), Commits: 2},
			}})},
			cutoff:   oneYearAgo,
			expected: 2,
		},
		{
			name:  "cutoff - unordered weeks are classified by their own start",
			repos: []domain.Repository{recent},
			stats: map[string]domain.ContributorStatsResult{"a": ready(domain.ContributorStats{Login: "octocat", Weeks: []domain.WeeklyCommits{
				{WeekStart: lastMonth, Commits: 3},
				{WeekStart: twoYearsAgo, Commits: 9},
				{WeekStart: now, Commits: 1},
			}})},
			cutoff:   oneYearAgo,
			expected: 4,
		},
		{
			name:     "user is not a contributor",
			repos:    []domain.Repository{recent},
			stats:    map[string]domain.ContributorStatsResult{"a": ready(domain.ContributorStats{Login: "someone", Total: 7})},
			expected: 0,
			warnings: []string{"octocat/a"},
		},
		{
			name: "pending and not found stats contribute zero",
			repos: []domain.Repository{
				recent,
				{Name: "b", Owner: "octocat", UpdatedAt: now},
				{Name: "c", Owner: "octocat", UpdatedAt: now},
			},
			stats: map[string]domain.ContributorStatsResult{
				"a": ready(octocatStats),
				"b": {Status: domain.StatsPending},
				"c": {Status: domain.StatsNotFound},
			},
			expected: 10,
			warnings: []string{"octocat/b", "octocat/c"},
		},
		{
			name: "one malformed response among three repositories",
			repos: []domain.Repository{
				recent,
				{Name: "b", Owner: "octocat", UpdatedAt: now},
				{Name: "c", Owner: "octocat", UpdatedAt: now},
			},
			stats: map[string]domain.ContributorStatsResult{
				"a": ready(octocatStats),
				"b": ready(domain.ContributorStats{Login: "octocat", Total: 3}),
				"c": {},
			},
			errs:     map[string]error{"c": errors.New("failed to get contributor stats: unexpected response")},
			expected: 13,
			warnings: []string{"octocat/c"},
		},
		{
			name:     "no repositories",
			repos:    []domain.Repository{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			for name, result := range tc.stats {
				fetcher.On("GetContributorStats", mock.Anything, "octocat", name).Return(result, tc.errs[name])
			}

			logger, logs := newCapturingLogger()
			aggregator := NewAggregator(fetcher, "octocat", 2, logger)
			total := aggregator.TotalCommits(context.Background(), tc.repos, tc.cutoff)

			assert.Equal(t, tc.expected, total)
			expectedWarnings := tc.warnings
			if expectedWarnings == nil {
				expectedWarnings = []string{}
			}
			assert.Equal(t, expectedWarnings, warnedRepositories(logs))
			fetcher.AssertExpectations(t)
		})
	}
}

func TestAggregator_TotalCommits_SkipsStaleRepositories(t *testing.T) {
	stale := domain.Repository{Name: "stale", Owner: "octocat", UpdatedAt: twoYearsAgo}
	atCutoff := domain.Repository{Name: "at-cutoff", Owner: "octocat", UpdatedAt: oneYearAgo}
	fresh := domain.Repository{Name: "fresh", Owner: "octocat", UpdatedAt: lastMonth}

	fetcher := new(mockFetcher)
	fetcher.On("GetContributorStats", mock.Anything, "octocat", "fresh").Return(ready(octocatStats), nil)

	aggregator := NewAggregator(fetcher, "octocat", 4, zerolog.Nop())
	total := aggregator.TotalCommits(context.Background(), []domain.Repository{stale, atCutoff, fresh}, oneYearAgo)

	assert.Equal(t, 6, total)
	fetcher.AssertNumberOfCalls(t, "GetContributorStats", 1)
	fetcher.AssertNotCalled(t, "GetContributorStats", mock.Anything, "octocat", "stale")
	fetcher.AssertNotCalled(t, "GetContributorStats", mock.Anything, "octocat", "at-cutoff")
}

func TestAggregator_TotalCommits_NoCutoffQueriesEveryRepository(t *testing.T) {
	stale := domain.Repository{Name: "stale", Owner: "octocat", UpdatedAt: twoYearsAgo}
	fresh := domain.Repository{Name: "fresh", Owner: "octocat", UpdatedAt: lastMonth}

	fetcher := new(mockFetcher)
	fetcher.On("GetContributorStats", mock.Anything, "octocat", "stale").Return(ready(domain.ContributorStats{Login: "octocat", Total: 4}), nil)
	fetcher.On("GetContributorStats", mock.Anything, "octocat", "fresh").Return(ready(octocatStats), nil)

	aggregator := NewAggregator(fetcher, "octocat", 1, zerolog.Nop())
	total := aggregator.TotalCommits(context.Background(), []domain.Repository{stale, fresh}, time.Time{})

	assert.Equal(t, 14, total)
	fetcher.AssertNumberOfCalls(t, "GetContributorStats", 2)
}

func TestAggregator_MatchesLoginCaseInsensitively(t *testing.T) {
	repo := domain.Repository{Name: "a", Owner: "octocat", UpdatedAt: now}
	fetcher := new(mockFetcher)
	fetcher.On("GetContributorStats", mock.Anything, "octocat", "a").Return(ready(domain.ContributorStats{Login: "OctoCat", Total: 3}), nil)

	total := NewAggregator(fetcher, "octocat", 1, zerolog.Nop()).TotalCommits(context.Background(), []domain.Repository{repo}, time.Time{})
	assert.Equal(t, 3, total)
}
