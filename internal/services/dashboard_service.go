package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardApplications = 100
	dashboardUnread       = 5
	dashboardMatches      = 5
)

type DashboardAPI interface {
	GetProfile(ctx context.Context) (*dtos.Profile, error)
	ListApplications(ctx context.Context, status string, page, pageSize int) (*dtos.Page[dtos.Application], error)
	ListNotifications(ctx context.Context, unreadOnly bool, page, pageSize int) (*dtos.Page[dtos.Notification], error)
	MailboxStatus(ctx context.Context) (dtos.MailboxStatus, error)
	JobMatches(ctx context.Context, page, pageSize int) (*dtos.Page[dtos.Job], error)
}

type DashboardData struct {
	Profile *dtos.Profile

	Applications     []dtos.Application
	ApplicationTotal int
	StatusCounts     map[string]int

	Unread      []dtos.Notification
	UnreadTotal int

	// optional panels; nil when their request failed
	Mailboxes  dtos.MailboxStatus
	TopMatches []dtos.Job
	Warnings   []string
}

type Dashboard struct {
	API DashboardAPI
	log *zap.Logger
}

func NewDashboard(api DashboardAPI, log *zap.Logger) *Dashboard {
	return &Dashboard{API: api, log: log}
}

// Load fetches every panel concurrently. Profile, applications and
// notifications are required; mailbox status and matches degrade to a
// warning.
func (d *Dashboard) Load(ctx context.Context) (*DashboardData, error) {
	g, gCtx := errgroup.WithContext(ctx)
	data := &DashboardData{}

	g.Go(func() error {
		p, err := d.API.GetProfile(gCtx)
		if err != nil {
			return fmt.Errorf("profile: %w", err)
		}
		data.Profile = p
		return nil
	})

	g.Go(func() error {
		page, err := d.API.ListApplications(gCtx, "", 1, dashboardApplications)
		if err != nil {
			return fmt.Errorf("applications: %w", err)
		}
		data.Applications = page.Items
		data.ApplicationTotal = page.Total
		data.StatusCounts = countStatuses(page.Items)
		return nil
	})

	g.Go(func() error {
		page, err := d.API.ListNotifications(gCtx, true, 1, dashboardUnread)
		if err != nil {
			return fmt.Errorf("notifications: %w", err)
		}
		data.Unread = page.Items
		data.UnreadTotal = page.Total
		return nil
	})

	var mailboxErr, matchesErr error
	g.Go(func() error {
		data.Mailboxes, mailboxErr = d.API.MailboxStatus(gCtx)
		return nil
	})
	g.Go(func() error {
		page, err := d.API.JobMatches(gCtx, 1, dashboardMatches)
		if err != nil {
			matchesErr = err
			return nil
		}
		data.TopMatches = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if mailboxErr != nil {
		d.log.Debug("Dashboard mailbox panel unavailable", zap.Error(mailboxErr))
		data.Warnings = append(data.Warnings, "mailbox status unavailable")
	}
	if matchesErr != nil {
		d.log.Debug("Dashboard matches panel unavailable", zap.Error(matchesErr))
		data.Warnings = append(data.Warnings, "job matches unavailable")
	}
	return data, nil
}

func countStatuses(apps []dtos.Application) map[string]int {
	counts := make(map[string]int)
	for _, a := range apps {
		counts[strings.ToLower(a.Status)]++
	}
	return counts
}
