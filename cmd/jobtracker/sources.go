package main

import (
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Job sources and their health",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	var (
		sources []dtos.JobSource
		health  []dtos.SourceHealth
	)
	g.Go(func() error {
		var err error
		sources, err = a.client.ListJobSources(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		health, err = a.client.JobSourceHealth(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	byName := make(map[string]dtos.SourceHealth, len(health))
	for _, h := range health {
		byName[h.Source] = h
	}

	now := time.Now()
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		lastRun := "never"
		if s.LastRunAt != nil {
			lastRun = format.Relative(*s.LastRunAt, now)
		}
		status, latency, lastErr := "unknown", "", ""
		if h, ok := byName[s.Name]; ok {
			status = h.Status
			latency = (time.Duration(h.LatencyMs) * time.Millisecond).String()
			lastErr = format.Truncate(h.LastError, 40)
		}
		rows = append(rows, []string{
			s.Name, s.Type, yesNo(s.Enabled), format.Count(s.JobsFound), lastRun, status, latency, lastErr,
		})
	}
	printTable(cmd.OutOrStdout(), []string{"Source", "Type", "Enabled", "Jobs", "Last run", "Health", "Latency", "Last error"}, rows)
	return nil
}
