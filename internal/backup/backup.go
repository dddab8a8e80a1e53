// Package backup delegates repository backups to the external
// github-backup tool.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Options configures one backup run.
type Options struct {
	Organization string
	Repository   string
	Token        string
	OutputDir    string
}

// Run invokes the external github-backup executable. Everything beyond
// argument assembly is the tool's responsibility.
func Run(ctx context.Context, opts Options) error {
	args := []string{
		"--repository", opts.Repository,
		"--output-directory", opts.OutputDir,
		"--all",
	}
	if opts.Token != "" {
		args = append(args, "--token", opts.Token)
	}
	args = append(args, opts.Organization)

	cmd := exec.CommandContext(ctx, "github-backup", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("github-backup failed: %w", err)
	}
	return nil
}
