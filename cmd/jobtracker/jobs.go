package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search jobs, see matches and apply",
}

var jobsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search job listings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJobsSearch,
}

var jobsMatchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Jobs matched to your profile",
	RunE:  runJobsMatches,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsApplyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsApply,
}

var (
	searchParams     dtos.JobSearchParams
	listPage         int
	listPageSize     int
	applyDocumentID  string
	applyCoverLetter string
)

func init() {
	f := jobsSearchCmd.Flags()
	f.StringVarP(&searchParams.Location, "location", "l", "", "Location filter")
	f.StringVarP(&searchParams.JobType, "type", "t", "", "Job type filter, e.g. Full-time")
	f.BoolVar(&searchParams.Remote, "remote", false, "Remote jobs only")
	f.IntVar(&searchParams.SalaryMin, "salary-min", 0, "Minimum salary")

	for _, c := range []*cobra.Command{jobsSearchCmd, jobsMatchesCmd} {
		c.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
		c.Flags().IntVar(&listPageSize, "page-size", 20, "Results per page")
	}

	jobsApplyCmd.Flags().StringVar(&applyDocumentID, "document", "", "Document ID to attach (default: primary resume)")
	jobsApplyCmd.Flags().StringVar(&applyCoverLetter, "cover-letter", "", "Cover letter text")

	jobsCmd.AddCommand(jobsSearchCmd, jobsMatchesCmd, jobsShowCmd, jobsApplyCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsSearch(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	params := searchParams
	if len(args) == 1 {
		params.Query = args[0]
	}
	params.Page, params.PageSize = listPage, listPageSize

	page, err := a.client.SearchJobs(cmd.Context(), params)
	if err != nil {
		return err
	}
	printJobs(cmd, page)
	return nil
}

func runJobsMatches(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	page, err := a.client.JobMatches(cmd.Context(), listPage, listPageSize)
	if err != nil {
		return err
	}
	printJobs(cmd, page)
	return nil
}

func printJobs(cmd *cobra.Command, page *dtos.Page[dtos.Job]) {
	now := time.Now()
	rows := make([][]string, 0, len(page.Items))
	for _, j := range page.Items {
		match := ""
		if score := j.MatchScore; score > 0 {
			// the backend reports either a fraction or a percentage
			if score <= 1 {
				score *= 100
			}
			match = format.Percent(score)
		}
		rows = append(rows, []string{
			j.ID,
			format.Truncate(j.Title, 40),
			format.Truncate(j.Company, 24),
			jobLocation(j),
			format.SalaryRange(j.SalaryMin, j.SalaryMax, j.Currency),
			match,
			format.Relative(j.PostedAt, now),
		})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"ID", "Title", "Company", "Location", "Salary", "Match", "Posted"}, rows)

	printPageFooter(out, pagerFor(page.Page, page.PageSize, page.Total))
}

func jobLocation(j dtos.Job) string {
	switch {
	case j.Remote && j.Location != "":
		return j.Location + " (remote)"
	case j.Remote:
		return "Remote"
	}
	return j.Location
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	job, err := a.client.GetJob(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeading(out, fmt.Sprintf("%s at %s", job.Title, job.Company))
	fmt.Fprintf(out, "Location: %s\n", jobLocation(*job))
	if job.JobType != "" {
		fmt.Fprintf(out, "Type:     %s\n", job.JobType)
	}
	fmt.Fprintf(out, "Salary:   %s\n", format.SalaryRange(job.SalaryMin, job.SalaryMax, job.Currency))
	fmt.Fprintf(out, "Posted:   %s (%s)\n", format.Date(job.PostedAt), format.Relative(job.PostedAt, time.Now()))
	if job.Source != "" {
		fmt.Fprintf(out, "Source:   %s\n", job.Source)
	}
	if len(job.Skills) > 0 {
		fmt.Fprintf(out, "Skills:   %s\n", strings.Join(job.Skills, ", "))
	}
	if job.URL != "" {
		fmt.Fprintf(out, "Link:     %s\n", job.URL)
	}
	if desc := format.HTMLToText(job.Description); desc != "" {
		fmt.Fprintf(out, "\n%s\n", desc)
	}
	return nil
}

func runJobsApply(cmd *cobra.Command, args []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	app, err := a.client.Apply(cmd.Context(), dtos.ApplyRequest{
		JobID:       args[0],
		DocumentID:  applyDocumentID,
		CoverLetter: applyCoverLetter,
	})
	if err != nil {
		return fmt.Errorf("could not apply: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied (application %s, status %s).\n", app.ID, app.Status)
	return nil
}
