package api

import (
	"context"
	"net/url"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

// Analytics returns dashboard metrics for a range such as "7d" or "30d".
func (c *Client) Analytics(ctx context.Context, period string) (*dtos.Analytics, error) {
	q := url.Values{}
	if period != "" {
		q.Set("range", period)
	}
	var out dtos.Analytics
	if err := c.getJSON(ctx, "/admin/analytics", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminUsers(ctx context.Context, page, pageSize int) (*dtos.Page[dtos.AdminUser], error) {
	var out dtos.Page[dtos.AdminUser]
	if err := c.getJSON(ctx, "/admin/users", pageQuery(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminSessions(ctx context.Context, page, pageSize int) (*dtos.Page[dtos.AdminSession], error) {
	var out dtos.Page[dtos.AdminSession]
	if err := c.getJSON(ctx, "/admin/sessions", pageQuery(page, pageSize), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
