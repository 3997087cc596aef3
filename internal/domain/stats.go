// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"time"
)

// ErrRepositoryNotFound is returned when a repository lookup by owner and name
// does not resolve to an accessible repository.
var ErrRepositoryNotFound = errors.New("repository not found")

// DefaultColors is the decorative palette handed to the README template.
var DefaultColors = []string{"6B5369", "251522", "402B3E", "160C14", "090308"}

// Repository is an immutable snapshot of a repository fetched once per run.
type Repository struct {
	Name      string
	Owner     string
	Stars     int
	UpdatedAt time.Time
	Private   bool
}

// FullName returns the "owner/name" identifier of the repository.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// WeeklyCommits is a single weekly bucket of a contributor's commit history.
type WeeklyCommits struct {
	WeekStart time.Time
	Commits   int
}

// ContributorStats holds a contributor's commit history for one repository.
type ContributorStats struct {
	Login string
	Total int
	Weeks []WeeklyCommits
}

// StatsStatus describes whether contributor statistics could be served.
type StatsStatus int

const (
	// StatsReady means the statistics were computed and returned.
	StatsReady StatsStatus = iota
	// StatsPending means GitHub accepted the request but is still computing the statistics.
	StatsPending
	// StatsNotFound means the repository (or its statistics) does not exist.
	StatsNotFound
)

func (s StatsStatus) String() string {
	switch s {
	case StatsReady:
		return "ready"
	case StatsPending:
		return "pending"
	case StatsNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ContributorStatsResult is the outcome of a contributor statistics lookup.
// Contributors is only populated when Status is StatsReady.
type ContributorStatsResult struct {
	Status       StatsStatus
	Contributors []ContributorStats
}

// ReadmeMetrics holds everything substituted into the README template.
type ReadmeMetrics struct {
	TotalStars             int
	TotalCommitsInPastYear int
	RepoCount              int
	PublicRepos            int
	AverageStars           float64
	Colors                 []string
	GeneratedAt            time.Time
}

// TemplateData exposes the metrics under the variable names used by the template.
func (m ReadmeMetrics) TemplateData() map[string]interface{} {
	return map[string]interface{}{
		"totalStars":             m.TotalStars,
		"totalCommitsInPastYear": m.TotalCommitsInPastYear,
		"repoCount":              m.RepoCount,
		"publicRepos":            m.PublicRepos,
		"averageStars":           m.AverageStars,
		"colors":                 m.Colors,
		"generatedAt":            m.GeneratedAt.UTC().Format("2006-01-02"),
	}
}
