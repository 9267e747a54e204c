package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justsurfingit/job-tracker-client/internal/onboarding"
	"github.com/justsurfingit/job-tracker-client/internal/tui"
	"github.com/spf13/cobra"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Set up your job search profile",
	Long:  "Walks through resume upload, profile details and job preferences, then saves the profile. Progress is kept locally until the profile is saved.",
	RunE:  runOnboard,
}

var onboardRestart bool

func init() {
	onboardCmd.Flags().BoolVar(&onboardRestart, "restart", false, "Discard saved progress and start over")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	a, id, err := setupAuthed(cmd)
	if err != nil {
		return err
	}

	store := onboarding.NewDraftStore(a.db, id.UserID)
	if onboardRestart {
		if err := store.ClearDraft(); err != nil {
			return fmt.Errorf("failed to discard saved progress: %w", err)
		}
	}

	wiz := onboarding.New(a.client, store, a.log)
	defer wiz.Close()

	model := tui.NewWizardModel(cmd.Context(), wiz)
	final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	m := final.(tui.Model)
	switch {
	case m.Completed():
		fmt.Fprintln(cmd.OutOrStdout(), "Profile saved. Try `jobtracker jobs matches`.")
	case m.Aborted():
		fmt.Fprintln(cmd.OutOrStdout(), "Progress saved. Run `jobtracker onboard` to continue.")
	}
	return nil
}
