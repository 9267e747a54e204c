package main

import (
	"fmt"
	"time"

	"github.com/justsurfingit/job-tracker-client/internal/format"
	"github.com/justsurfingit/job-tracker-client/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "Read and follow notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification-id...]",
	Short: "Mark notifications as read",
	RunE:  runNotificationsRead,
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for new notifications until interrupted",
	RunE:  runNotificationsWatch,
}

var (
	notifUnread   bool
	notifReadAll  bool
	watchSchedule string
)

func init() {
	notificationsListCmd.Flags().BoolVarP(&notifUnread, "unread", "u", false, "Unread only")
	notificationsListCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
	notificationsListCmd.Flags().IntVar(&listPageSize, "page-size", 20, "Results per page")

	notificationsReadCmd.Flags().BoolVar(&notifReadAll, "all", false, "Mark everything as read")

	notificationsWatchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron schedule (default from config)")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsWatchCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	page, err := a.client.ListNotifications(cmd.Context(), notifUnread, listPage, listPageSize)
	if err != nil {
		return err
	}

	now := time.Now()
	rows := make([][]string, 0, len(page.Items))
	for _, n := range page.Items {
		mark := ""
		if !n.Read {
			mark = "•"
		}
		rows = append(rows, []string{
			mark,
			n.ID,
			format.Truncate(n.Title, 40),
			format.Truncate(format.HTMLToText(n.Message), 60),
			format.Relative(n.CreatedAt, now),
		})
	}
	out := cmd.OutOrStdout()
	printTable(out, []string{"", "ID", "Title", "Message", "When"}, rows)
	printPageFooter(out, pagerFor(page.Page, page.PageSize, page.Total))
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	if !notifReadAll && len(args) == 0 {
		return fmt.Errorf("pass notification IDs or --all")
	}
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	if notifReadAll {
		if err := a.client.MarkAllNotificationsRead(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked as read.")
		return nil
	}
	for _, id := range args {
		if err := a.client.MarkNotificationRead(cmd.Context(), id); err != nil {
			return fmt.Errorf("notification %s: %w", id, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %d as read.\n", len(args))
	return nil
}

func runNotificationsWatch(cmd *cobra.Command, _ []string) error {
	a, _, err := setupAuthed(cmd)
	if err != nil {
		return err
	}
	schedule := watchSchedule
	if schedule == "" {
		schedule = a.cfg.PollSchedule
	}

	out := cmd.OutOrStdout()
	watcher := services.NewNotificationWatcher(a.db, a.client, a.log, schedule, func(ev services.NotificationEvent) {
		line := fmt.Sprintf("[%s] %s", format.DateTime(ev.Notification.CreatedAt), ev.Notification.Title)
		if ev.Application != nil && ev.Application.Job != nil {
			line += dimStyle.Render(fmt.Sprintf("  (%s at %s, %s)", ev.Application.Job.Title, ev.Application.Job.Company, ev.Application.Status))
		}
		fmt.Fprintln(out, line)
		if ev.Text != "" {
			fmt.Fprintln(out, "  "+format.Truncate(ev.Text, 200))
		}
	})

	ctx := cmd.Context()
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Watching notifications (%s). Press Ctrl+C to stop.\n", schedule)
	<-ctx.Done()
	watcher.Stop()
	a.log.Debug("Watch ended", zap.Error(ctx.Err()))
	return nil
}
