package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/naka-gawa/readme-stats/internal/config"
	"github.com/naka-gawa/readme-stats/internal/gateway"
	"github.com/naka-gawa/readme-stats/internal/render"
	"github.com/naka-gawa/readme-stats/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Renders GitHub stats into the README template",
	Long: `Fetches the authenticated user's repositories, totals stars and the commits
authored in the past year, and writes the rendered template to the output file.
Requires GH_ACCESS_TOKEN and GH_USERNAME (a .env file is also read).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			fallback := newLogger(false)
			fallback.Error().Err(err).Msg("invalid configuration")
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger := newLogger(cfg.Report.Verbose)

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, cfg.GitHub.RequestTimeout, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create GitHub gateway")
			return err
		}
		reporter := usecase.NewReporter(
			usecase.NewCollector(githubGateway, cfg.GitHub.Concurrency, logger),
			usecase.NewAggregator(githubGateway, cfg.GitHub.Username, cfg.GitHub.Concurrency, logger),
			render.NewRenderer(cfg.Report.TemplatePath, cfg.Report.OutputPath),
			cfg.Report.AllTime,
			logger,
		)

		metrics, err := reporter.Run(ctx, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("failed to generate report")
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d stars, %d commits, %d repositories (%d public)\n",
			cfg.Report.OutputPath, metrics.TotalStars, metrics.TotalCommitsInPastYear, metrics.RepoCount, metrics.PublicRepos)
		return nil
	},
}

// newLogger logs warnings and errors by default; verbose mode adds progress and debug output.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("template", "t", "main.mustache", "Path of the Mustache template")
	renderCmd.Flags().StringP("output", "o", "README.md", "Path of the rendered output file (overwritten)")
	renderCmd.Flags().Int("concurrency", 8, "Maximum number of concurrent GitHub API calls")
	renderCmd.Flags().Duration("request-timeout", 30*time.Second, "Deadline for each GitHub API call (0 disables)")
	renderCmd.Flags().Bool("all-time", false, "Count commits over the whole history instead of the past year")
}
