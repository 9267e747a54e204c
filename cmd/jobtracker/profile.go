package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE:  runProfile,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change account settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change account settings",
	RunE:  runSettingsSet,
}

var alertFrequencies = []string{"instant", "daily", "weekly"}

func init() {
	f := settingsSetCmd.Flags()
	f.Bool("email-notifications", false, "Send notifications by email")
	f.Bool("job-alerts", false, "Send alerts for new matching jobs")
	f.String("alert-frequency", "", "instant, daily or weekly")
	f.String("timezone", "", "IANA timezone, e.g. Europe/London")
	f.String("currency", "", "Display currency code, e.g. USD")

	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(profileCmd, settingsCmd)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	p, err := a.client.GetProfile(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeading(out, p.FullName)
	field(out, "Email", p.Email)
	field(out, "Phone", p.Phone)
	field(out, "Location", p.Location)
	field(out, "Title", p.CurrentTitle)
	field(out, "Experience", p.YearsOfExperience)
	field(out, "Skills", strings.Join(p.Skills, ", "))
	field(out, "Looking for", strings.Join(p.DesiredJobTitles, ", "))
	field(out, "Job types", strings.Join(p.JobType, ", "))
	field(out, "Locations", strings.Join(p.PreferredLocations, ", "))
	field(out, "Salary", p.SalaryRange)
	field(out, "LinkedIn", p.LinkedInURL)
	field(out, "GitHub", p.GitHubURL)
	field(out, "Portfolio", p.PortfolioURL)
	field(out, "Resume", p.ResumeURL)
	if !p.UpdatedAt.IsZero() {
		field(out, "Updated", format.Relative(p.UpdatedAt, time.Now()))
	}
	return nil
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", label+":", value)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	s, err := a.client.GetSettings(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	field(out, "Email notes", yesNo(s.EmailNotifications))
	field(out, "Job alerts", yesNo(s.JobAlerts))
	field(out, "Frequency", s.AlertFrequency)
	field(out, "Timezone", s.Timezone)
	field(out, "Currency", s.Currency)
	return nil
}

// runSettingsSet reads the current settings and changes only the flags given.
func runSettingsSet(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	changed := false
	for _, name := range []string{"email-notifications", "job-alerts", "alert-frequency", "timezone", "currency"} {
		changed = changed || f.Changed(name)
	}
	if !changed {
		return fmt.Errorf("nothing to change; see --help")
	}
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	s, err := a.client.GetSettings(cmd.Context())
	if err != nil {
		return err
	}

	if f.Changed("email-notifications") {
		s.EmailNotifications, _ = f.GetBool("email-notifications")
	}
	if f.Changed("job-alerts") {
		s.JobAlerts, _ = f.GetBool("job-alerts")
	}
	if f.Changed("alert-frequency") {
		v, _ := f.GetString("alert-frequency")
		if !contains(alertFrequencies, v) {
			return fmt.Errorf("alert frequency must be one of %s", strings.Join(alertFrequencies, ", "))
		}
		s.AlertFrequency = v
	}
	if f.Changed("timezone") {
		v, _ := f.GetString("timezone")
		if _, err := time.LoadLocation(v); err != nil {
			return fmt.Errorf("unknown timezone %q", v)
		}
		s.Timezone = v
	}
	if f.Changed("currency") {
		v, _ := f.GetString("currency")
		s.Currency = strings.ToUpper(strings.TrimSpace(v))
	}

	if _, err := a.client.UpdateSettings(cmd.Context(), *s); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}
