// Package main is the jobtracker command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/auth"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "jobtracker",
	Short:         "Job search dashboard in the terminal",
	Long:          "jobtracker talks to the Job Tracker backend: onboarding, job search, applications, notifications and mailbox connections.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $JOBTRACKER_CONFIG or ~/.config/jobtracker/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if current != nil {
		current.close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

// describe turns errors into the message a user should see.
func describe(err error) string {
	if errors.Is(err, auth.ErrNotLoggedIn) {
		return "not logged in; run `jobtracker login` first"
	}
	return api.Message(err)
}
