package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/onboarding"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and forget local state",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

var (
	authEmail    string
	authPassword string
	authName     string
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "Account email (prompted when empty)")
		c.Flags().StringVar(&authPassword, "password", "", "Password (prompted when empty; prefer the prompt)")
	}
	signupCmd.Flags().StringVarP(&authName, "name", "n", "", "Display name")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	email, password, err := credentials()
	if err != nil {
		return err
	}

	resp, err := a.anon.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return begin(cmd, a, resp)
}

func runSignup(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if authName == "" {
		if authName, err = prompt("Name: "); err != nil {
			return err
		}
	}
	email, password, err := credentials()
	if err != nil {
		return err
	}

	resp, err := a.anon.Signup(cmd.Context(), dtos.SignupRequest{Name: authName, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return begin(cmd, a, resp)
}

func begin(cmd *cobra.Command, a *app, resp *dtos.AuthResponse) error {
	if err := a.session.Begin(resp); err != nil {
		return err
	}
	id, err := a.session.Identity()
	if err != nil {
		return err
	}
	a.log.Info("Logged in", zap.String("user_id", id.UserID))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged in as %s\n", firstNonEmpty(id.Name, id.Email))

	completed, err := onboarding.NewDraftStore(a.db, id.UserID).Completed()
	if err != nil {
		a.log.Warn("Could not read onboarding flag", zap.Error(err))
	}
	if !completed && (resp.User == nil || !resp.User.OnboardingCompleted) {
		fmt.Fprintln(out, "Finish setting up your profile with `jobtracker onboard`.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if !a.session.LoggedIn() {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	if refresh := a.session.RefreshToken(); refresh != "" {
		// the local session goes away even if the server is unreachable
		if err := a.client.Logout(cmd.Context(), refresh); err != nil {
			a.log.Warn("Server logout failed", zap.Error(err))
		}
	}
	if err := a.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear local session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, id, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	user, err := a.client.Me(cmd.Context())
	if err != nil {
		// fall back to what the token says
		a.log.Debug("Could not fetch user", zap.Error(err))
		fmt.Fprintf(out, "%s <%s> (%s)\n", id.Name, id.Email, id.Role)
		return nil
	}
	fmt.Fprintf(out, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	if !user.OnboardingCompleted {
		fmt.Fprintln(out, "Onboarding not completed.")
	}
	return nil
}

func credentials() (email, password string, err error) {
	email, password = authEmail, authPassword
	if email == "" {
		if email, err = prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = promptSecret("Password: "); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
