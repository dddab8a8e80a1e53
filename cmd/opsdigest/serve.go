package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/opsdigest/opsdigest/internal/api"
	"github.com/opsdigest/opsdigest/internal/backup"
	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

var backupDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		handler := api.NewHandler(newGitHubClient(cfg), timewindow.NewResolver())
		router := api.SetupRoutes(handler)

		addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
		slog.Info("starting API server", "addr", addr)
		return router.Run(addr)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up repositories via the github-backup tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		if repository == "" {
			return apperrors.NewUsageError("please specify --repository")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return backup.Run(context.Background(), backup.Options{
			Organization: organization,
			Repository:   repository,
			Token:        cfg.GitHubToken,
			OutputDir:    backupDir,
		})
	},
}

func init() {
	backupCmd.Flags().StringVar(&organization, "organization", "", "GitHub organization owning the repository")
	backupCmd.Flags().StringVar(&repository, "repository", "", "repository to back up")
	backupCmd.Flags().StringVar(&backupDir, "output-dir", ".", "directory receiving the backup")
}
