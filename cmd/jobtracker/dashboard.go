package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/justsurfingit/job-tracker-client/internal/oauthflow"
	"github.com/justsurfingit/job-tracker-client/internal/services"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Overview of your job search",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	data, err := services.NewDashboard(a.client, a.log).Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	now := time.Now()
	name := data.Profile.FullName
	if name == "" {
		name = "there"
	}
	printHeading(out, fmt.Sprintf("Hi %s", name))
	if len(data.Profile.DesiredJobTitles) == 0 {
		fmt.Fprintln(out, warnStyle.Render("Your profile is incomplete. Run `jobtracker onboard`."))
	}

	fmt.Fprintln(out)
	printHeading(out, fmt.Sprintf("Applications (%s)", format.Count(data.ApplicationTotal)))
	statuses := make([]string, 0, len(data.StatusCounts))
	peak := 0
	for s, n := range data.StatusCounts {
		statuses = append(statuses, s)
		if n > peak {
			peak = n
		}
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		n := data.StatusCounts[s]
		fmt.Fprintf(out, "  %-10s %s %d\n", s, format.Bar(n, peak, 30), n)
	}

	fmt.Fprintln(out)
	printHeading(out, fmt.Sprintf("Unread notifications (%s)", format.Count(data.UnreadTotal)))
	for _, n := range data.Unread {
		fmt.Fprintf(out, "  %s %s\n", n.Title, dimStyle.Render(format.Relative(n.CreatedAt, now)))
	}

	if data.Mailboxes != nil {
		fmt.Fprintln(out)
		printHeading(out, "Mailboxes")
		for _, p := range oauthflow.Providers {
			st := data.Mailboxes[string(p)]
			state := "not connected"
			if st.Connected {
				state = "connected" + emailSuffix(st.Email)
			}
			fmt.Fprintf(out, "  %-8s %s\n", p.Title(), state)
		}
	}

	if len(data.TopMatches) > 0 {
		fmt.Fprintln(out)
		printHeading(out, "Top matches")
		for _, j := range data.TopMatches {
			fmt.Fprintf(out, "  %s  %s at %s\n", dimStyle.Render(j.ID), j.Title, j.Company)
		}
	}

	for _, w := range data.Warnings {
		fmt.Fprintln(out, warnStyle.Render("! "+w))
	}
	return nil
}
