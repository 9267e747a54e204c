package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/handlers"
	"github.com/justsurfingit/job-tracker-client/internal/oauthflow"
	"github.com/justsurfingit/job-tracker-client/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mailboxCmd = &cobra.Command{
	Use:   "mailbox",
	Short: "Connect Gmail or Outlook so replies are tracked automatically",
}

var mailboxConnectCmd = &cobra.Command{
	Use:       "connect <gmail|outlook>",
	Short:     "Open the provider's consent window and connect the mailbox",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"gmail", "outlook"},
	RunE:      runMailboxConnect,
}

var mailboxStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connected mailboxes",
	RunE:  runMailboxStatus,
}

var mailboxDisconnectCmd = &cobra.Command{
	Use:       "disconnect <gmail|outlook>",
	Short:     "Disconnect a mailbox",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"gmail", "outlook"},
	RunE:      runMailboxDisconnect,
}

var connectTimeout time.Duration

func init() {
	mailboxConnectCmd.Flags().DurationVar(&connectTimeout, "timeout", 5*time.Minute, "Give up after this long")

	mailboxCmd.AddCommand(mailboxConnectCmd, mailboxStatusCmd, mailboxDisconnectCmd)
	rootCmd.AddCommand(mailboxCmd)
}

func runMailboxConnect(cmd *cobra.Command, args []string) error {
	provider, err := oauthflow.ParseProvider(args[0])
	if err != nil {
		return err
	}
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}

	server := handlers.NewCallbackServer(a.cfg.CallbackAddr, a.log)
	if err := server.Start(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.log.Warn("Callback server shutdown failed", zap.Error(err))
		}
	}()

	flow := oauthflow.NewHandshake(a.client, server,
		oauthflow.NewBrowserOpener(a.cfg.BrowserBin, a.log), a.log,
		oauthflow.WithPollInterval(a.cfg.PopupInterval),
	)
	mailboxes := services.NewMailboxService(a.client, flow, a.log)

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opening the %s consent window...\n", provider.Title())
	res, err := mailboxes.Connect(ctx, provider)
	if err != nil {
		return connectError(provider, err, connectTimeout)
	}
	// when the backend could not be asked, the service keeps an optimistic state
	fmt.Fprintln(out, connectMessage(provider, res, mailboxes.States()[provider].Connected))
	return nil
}

// connectError turns a failed attempt into what the user should read.
func connectError(provider oauthflow.Provider, err error, timeout time.Duration) error {
	var cbErr *oauthflow.CallbackError
	switch {
	case errors.Is(err, oauthflow.ErrPopupBlocked):
		return fmt.Errorf("could not open the consent window; set browser_bin in the config to a Chrome or Chromium binary: %w", err)
	case errors.As(err, &cbErr):
		return cbErr
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s connection timed out after %s", provider.Title(), timeout)
	}
	return err
}

func connectMessage(provider oauthflow.Provider, res services.ConnectResult, assumed bool) string {
	switch {
	case res.Confirmed:
		return fmt.Sprintf("%s connected%s.", provider.Title(), emailSuffix(res.Email))
	case res.Outcome == oauthflow.OutcomeClosedUnconfirmed && assumed:
		return fmt.Sprintf("%s window closed. Assuming connected; check with `jobtracker mailbox status`.", provider.Title())
	}
	return fmt.Sprintf("%s window closed before the connection finished.", provider.Title())
}

func runMailboxStatus(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	states, err := services.NewMailboxService(a.client, nil, a.log).Refresh(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(oauthflow.Providers))
	for _, p := range oauthflow.Providers {
		st := states[p]
		rows = append(rows, []string{p.Title(), yesNo(st.Connected), st.Email})
	}
	printTable(cmd.OutOrStdout(), []string{"Provider", "Connected", "Account"}, rows)
	return nil
}

func runMailboxDisconnect(cmd *cobra.Command, args []string) error {
	provider, err := oauthflow.ParseProvider(args[0])
	if err != nil {
		return err
	}
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	if err := services.NewMailboxService(a.client, nil, a.log).Disconnect(cmd.Context(), provider); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s disconnected.\n", provider.Title())
	return nil
}

func emailSuffix(email string) string {
	if email == "" {
		return ""
	}
	return " as " + email
}
