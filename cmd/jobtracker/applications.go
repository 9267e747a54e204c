package main

import (
	"fmt"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/api"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
)

var applicationStatuses = []string{"applied", "interview", "offer", "rejected", "withdrawn"}

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Track your applications",
}

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	RunE:  runApplicationsList,
}

var applicationsUpdateCmd = &cobra.Command{
	Use:   "update <application-id>",
	Short: "Change the status or notes of an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsUpdate,
}

var (
	appStatusFilter string
	appListAll      bool
	appUpdate       dtos.ApplicationUpdate
)

func init() {
	applicationsListCmd.Flags().StringVarP(&appStatusFilter, "status", "s", "", "Only this status")
	applicationsListCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
	applicationsListCmd.Flags().IntVar(&listPageSize, "page-size", 20, "Results per page")
	applicationsListCmd.Flags().BoolVar(&appListAll, "all", false, "Fetch every page")

	applicationsUpdateCmd.Flags().StringVarP(&appUpdate.Status, "status", "s", "", "New status: applied, interview, offer, rejected or withdrawn")
	applicationsUpdateCmd.Flags().StringVar(&appUpdate.Notes, "notes", "", "Notes")

	applicationsCmd.AddCommand(applicationsListCmd, applicationsUpdateCmd)
	rootCmd.AddCommand(applicationsCmd)
}

func runApplicationsList(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}

	pager := api.NewPager(listPageSize)
	pager.Page = listPage
	var apps []dtos.Application
	for {
		page, err := a.client.ListApplications(cmd.Context(), appStatusFilter, pager.Page, pager.PageSize)
		if err != nil {
			return err
		}
		pager.Observe(page.Page, page.PageSize, page.Total)
		apps = append(apps, page.Items...)
		if !appListAll || len(page.Items) == 0 || !pager.Next() {
			break
		}
	}

	now := time.Now()
	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		title, company := app.JobID, ""
		if app.Job != nil {
			title, company = app.Job.Title, app.Job.Company
		}
		rows = append(rows, []string{
			app.ID,
			format.Truncate(title, 40),
			format.Truncate(company, 24),
			app.Status,
			format.Date(app.AppliedAt),
			format.Relative(app.UpdatedAt, now),
		})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"ID", "Job", "Company", "Status", "Applied", "Updated"}, rows)
	if !appListAll {
		printPageFooter(out, pager)
	}
	return nil
}

func runApplicationsUpdate(cmd *cobra.Command, args []string) error {
	if appUpdate.Status == "" && appUpdate.Notes == "" {
		return fmt.Errorf("nothing to update: pass --status or --notes")
	}
	if appUpdate.Status != "" && !contains(applicationStatuses, appUpdate.Status) {
		return fmt.Errorf("unknown status %q", appUpdate.Status)
	}
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	app, err := a.client.UpdateApplication(cmd.Context(), args[0], appUpdate)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Application %s is now %s.\n", app.ID, app.Status)
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
