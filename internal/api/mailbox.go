package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

// MailboxAuthURL asks the backend for the provider's consent URL. The backend
// sends the browser to redirectURI with the given state once consent ends.
// This call is never retried.
func (c *Client) MailboxAuthURL(ctx context.Context, provider, redirectURI, state string) (string, error) {
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)

	var out dtos.MailboxAuthURL
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/mailbox/" + url.PathEscape(provider) + "/connect",
		query:  q,
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	if out.AuthURL == "" {
		return "", fmt.Errorf("backend returned an empty authorization URL for %s", provider)
	}
	return out.AuthURL, nil
}

func (c *Client) MailboxStatus(ctx context.Context) (dtos.MailboxStatus, error) {
	out := dtos.MailboxStatus{}
	if err := c.getJSON(ctx, "/mailbox/status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DisconnectMailbox(ctx context.Context, provider string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/mailbox/"+url.PathEscape(provider), nil, nil)
}
