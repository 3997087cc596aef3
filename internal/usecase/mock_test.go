package usecase

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *mockFetcher) GetRepository(ctx context.Context, owner, name string) (domain.Repository, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(domain.Repository), args.Error(1)
}

func (m *mockFetcher) GetContributorStats(ctx context.Context, owner, name string) (domain.ContributorStatsResult, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(domain.ContributorStatsResult), args.Error(1)
}

// mockRenderer records the metrics it was asked to render.
type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(metrics domain.ReadmeMetrics) error {
	args := m.Called(metrics)
	return args.Error(0)
}

func ready(contributors ...domain.ContributorStats) domain.ContributorStatsResult {
	return domain.ContributorStatsResult{Status: domain.StatsReady, Contributors: contributors}
}

// newCapturingLogger returns a JSON logger whose output is collected in the returned buffer.
// SyncWriter serializes writes from the concurrent fan-out goroutines.
func newCapturingLogger() (zerolog.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return zerolog.New(zerolog.SyncWriter(buf)), buf
}

// warnedRepositories returns the repository of every warn-level line in buf, sorted.
func warnedRepositories(buf *bytes.Buffer) []string {
	repos := []string{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, `"level":"warn"`) {
			continue
		}
		_, after, ok := strings.Cut(line, `"repository":"`)
		if !ok {
			repos = append(repos, "")
			continue
		}
		repo, _, _ := strings.Cut(after, `"`)
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}
