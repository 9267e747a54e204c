package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

func (c *Client) SearchJobs(ctx context.Context, p dtos.JobSearchParams) (*dtos.Page[dtos.Job], error) {
	q := pageQuery(p.Page, p.PageSize)
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.JobType != "" {
		q.Set("jobType", p.JobType)
	}
	if p.Remote {
		q.Set("remote", "true")
	}
	if p.SalaryMin > 0 {
		q.Set("salaryMin", fmt.Sprint(p.SalaryMin))
	}

	var out dtos.Page[dtos.Job]
	if err := c.getJSON(ctx, "/jobs/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobMatches lists jobs ranked against the user's profile.
func (c *Client) JobMatches(ctx context.Context, page, pageSize int) (*dtos.Page[dtos.Job], error) {
	var out dtos.Page[dtos.Job]
	if err := c.getJSON(ctx, "/jobs/matches", pageQuery(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (*dtos.Job, error) {
	var out dtos.Job
	if err := c.getJSON(ctx, "/jobs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Apply(ctx context.Context, req dtos.ApplyRequest) (*dtos.Application, error) {
	var out dtos.Application
	if err := c.sendJSON(ctx, http.MethodPost, "/jobs/"+url.PathEscape(req.JobID)+"/apply", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListApplications(ctx context.Context, status string, page, pageSize int) (*dtos.Page[dtos.Application], error) {
	q := pageQuery(page, pageSize)
	if status != "" {
		q.Set("status", status)
	}
	var out dtos.Page[dtos.Application]
	if err := c.getJSON(ctx, "/applications", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id string, update dtos.ApplicationUpdate) (*dtos.Application, error) {
	var out dtos.Application
	if err := c.sendJSON(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool, page, pageSize int) (*dtos.Page[dtos.Notification], error) {
	q := pageQuery(page, pageSize)
	if unreadOnly {
		q.Set("unread", "true")
	}
	var out dtos.Page[dtos.Notification]
	if err := c.getJSON(ctx, "/notifications", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPost, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

func (c *Client) ListJobSources(ctx context.Context) ([]dtos.JobSource, error) {
	var out []dtos.JobSource
	if err := c.getJSON(ctx, "/job-sources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) JobSourceHealth(ctx context.Context) ([]dtos.SourceHealth, error) {
	var out []dtos.SourceHealth
	if err := c.getJSON(ctx, "/job-sources/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
