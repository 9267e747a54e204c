package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
)

var errNotAdmin = errors.New("this command needs an admin account")

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Platform analytics for administrators",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Signups, activity and retention",
	RunE:  runAdminStats,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE:  runAdminUsers,
}

var adminSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List active sessions",
	RunE:  runAdminSessions,
}

var (
	statsRange string
	chartWidth int
)

func init() {
	adminStatsCmd.Flags().StringVarP(&statsRange, "range", "r", "7d", "Period: 7d, 30d or 90d")
	adminStatsCmd.Flags().IntVar(&chartWidth, "width", 40, "Bar chart width")
	for _, c := range []*cobra.Command{adminUsersCmd, adminSessionsCmd} {
		c.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
		c.Flags().IntVar(&listPageSize, "page-size", 20, "Results per page")
	}

	adminCmd.AddCommand(adminStatsCmd, adminUsersCmd, adminSessionsCmd)
	rootCmd.AddCommand(adminCmd)
}

func setupAdmin(cmd *cobra.Command) (*app, error) {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return nil, err
	}
	// the backend enforces this too; checking here gives a clearer message
	if !a.session.IsAdmin() {
		return nil, errNotAdmin
	}
	return a, nil
}

func runAdminStats(cmd *cobra.Command, _ []string) error {
	a, err := setupAdmin(cmd)
	if err != nil {
		return err
	}
	stats, err := a.client.Analytics(cmd.Context(), statsRange)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeading(out, "Overview ("+statsRange+")")
	fmt.Fprintf(out, "Users:        %s\n", format.Count(stats.TotalUsers))
	fmt.Fprintf(out, "Active users: %s (%s vs previous period)\n",
		format.Count(stats.ActiveUsers), format.SignedPercent(format.Growth(stats.ActiveUsers, stats.PreviousActiveUsers)))
	fmt.Fprintf(out, "Applications: %s\n", format.Count(stats.TotalApplications))

	if len(stats.Signups) > 0 {
		fmt.Fprintln(out)
		printHeading(out, "Signups per day")
		fmt.Fprint(out, format.BarChart(stats.Signups, chartWidth))
	}
	if len(stats.Applications) > 0 {
		fmt.Fprintln(out)
		printHeading(out, "Applications per day")
		fmt.Fprint(out, format.BarChart(stats.Applications, chartWidth))
	}
	if len(stats.Retention) > 0 {
		fmt.Fprintln(out)
		printHeading(out, "Retention")
		rows := make([][]string, 0, len(stats.Retention))
		for _, c := range stats.Retention {
			pct := format.Retention(c)
			rows = append(rows, []string{
				c.Label,
				format.Count(c.Size),
				format.Count(c.Retained),
				format.Percent(pct),
				format.Bar(int(pct), 100, 20),
			})
		}
		printTable(out, []string{"Cohort", "Users", "Retained", "Rate", ""}, rows)
	}
	return nil
}

func runAdminUsers(cmd *cobra.Command, _ []string) error {
	a, err := setupAdmin(cmd)
	if err != nil {
		return err
	}
	page, err := a.client.AdminUsers(cmd.Context(), listPage, listPageSize)
	if err != nil {
		return err
	}
	now := time.Now()
	rows := make([][]string, 0, len(page.Items))
	for _, u := range page.Items {
		active := "never"
		if u.LastActiveAt != nil {
			active = format.Relative(*u.LastActiveAt, now)
		}
		rows = append(rows, []string{u.ID, u.Name, u.Email, u.Role, format.Date(u.CreatedAt), active})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"ID", "Name", "Email", "Role", "Joined", "Last active"}, rows)
	printPageFooter(out, pagerFor(page.Page, page.PageSize, page.Total))
	return nil
}

func runAdminSessions(cmd *cobra.Command, _ []string) error {
	a, err := setupAdmin(cmd)
	if err != nil {
		return err
	}
	page, err := a.client.AdminSessions(cmd.Context(), listPage, listPageSize)
	if err != nil {
		return err
	}
	now := time.Now()
	rows := make([][]string, 0, len(page.Items))
	for _, s := range page.Items {
		rows = append(rows, []string{
			s.UserEmail, s.IPAddress, format.Truncate(s.UserAgent, 40),
			format.DateTime(s.StartedAt), format.Relative(s.LastSeenAt, now),
		})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"User", "IP", "Agent", "Started", "Last seen"}, rows)
	printPageFooter(out, pagerFor(page.Page, page.PageSize, page.Total))
	return nil
}
