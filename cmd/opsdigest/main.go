package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsdigest/opsdigest/internal/cache"
	cachepostgres "github.com/opsdigest/opsdigest/internal/cache/postgres"
	cachesqlite "github.com/opsdigest/opsdigest/internal/cache/sqlite"
	"github.com/opsdigest/opsdigest/internal/config"
	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

var (
	verbose      bool
	organization string
	author       string
	when         string
	timerange    string
	repository   string
	reposFile    string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "opsdigest",
	Short: "Activity digest tool",
	Long: `A CLI tool that aggregates activity from GitHub, Opsgenie and Slack
into periodic Markdown digests, and publishes weekly digests into a
Slack thread without duplicating messages across repeated runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "turn on debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperrors.NewUsageError(err.Error())
	})

	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(attentionCmd)
	rootCmd.AddCommand(ciCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(slackCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes usage errors (2) from processing errors (1).
func exitCode(err error) int {
	if apperrors.IsUsage(err) || apperrors.IsUnknownFormat(err) {
		return 2
	}
	if _, ok := err.(*config.ConfigError); ok {
		return 2
	}
	return 1
}

// setupLogging installs the process logger, tagged with a per-run id
// for correlating batch invocations.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("run", uuid.NewString()))
}

// newCacheStore opens the configured response cache backend. Cache
// trouble degrades to uncached operation, never aborts a report.
func newCacheStore(cfg *config.Config) cache.Store {
	var (
		store cache.Store
		err   error
	)
	switch cfg.CacheBackend {
	case "postgres":
		store, err = cachepostgres.NewPostgresStore(cfg.PostgresURL)
	default:
		store, err = cachesqlite.NewSQLiteStore(cfg.CachePath)
	}
	if err != nil {
		slog.Warn("response cache unavailable, continuing without", "error", err)
		return nil
	}
	return store
}

// newGitHubClient builds the process-wide GitHub client. A missing
// token is tolerated with a warning, mirroring anonymous API access.
func newGitHubClient(cfg *config.Config) *github.Client {
	if cfg.GitHubToken == "" {
		slog.Warn("GITHUB_TOKEN not defined. This will exhaust the rate limit quickly.")
	}
	return github.NewClient(cfg.GitHubToken, newCacheStore(cfg))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// whenExpression merges the --when and --timerange spellings.
func whenExpression() string {
	if when != "" {
		return when
	}
	return timerange
}

// resolveWindow resolves the user time expression once per invocation.
func resolveWindow(resolver *timewindow.Resolver) (timewindow.TimeWindow, error) {
	return resolver.Resolve(whenExpression())
}

// repositoryList reads the repository scope from --repository or
// --repositories-file.
func repositoryList() ([]string, error) {
	if repository != "" {
		return []string{repository}, nil
	}
	if reposFile != "" {
		raw, err := os.ReadFile(reposFile)
		if err != nil {
			return nil, err
		}
		var repositories []string
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				repositories = append(repositories, line)
			}
		}
		return repositories, nil
	}
	return nil, apperrors.NewUsageError("please specify --repository or --repositories-file")
}
