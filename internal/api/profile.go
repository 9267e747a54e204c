package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

func (c *Client) GetProfile(ctx context.Context) (*dtos.Profile, error) {
	var out dtos.Profile
	if err := c.getJSON(ctx, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update dtos.ProfileUpdate) (*dtos.Profile, error) {
	var out dtos.Profile
	if err := c.sendJSON(ctx, http.MethodPut, "/profile", update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadResume uploads a resume file and returns the fields the backend
// parsed out of it.
func (c *Client) UploadResume(ctx context.Context, path string) (*dtos.ResumeParseResult, error) {
	var out dtos.ResumeParseResult
	if err := c.upload(ctx, "/profile/resume", "resume", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (*dtos.Settings, error) {
	var out dtos.Settings
	if err := c.getJSON(ctx, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s dtos.Settings) (*dtos.Settings, error) {
	var out dtos.Settings
	if err := c.sendJSON(ctx, http.MethodPut, "/settings", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadDocument(ctx context.Context, path, docType string) (*dtos.Document, error) {
	var out dtos.Document
	fields := url.Values{}
	if docType != "" {
		fields.Set("type", docType)
	}
	if err := c.upload(ctx, "/documents", "file", path, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]dtos.Document, error) {
	var out []dtos.Document
	if err := c.getJSON(ctx, "/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetPrimaryDocument(ctx context.Context, id string) (*dtos.Document, error) {
	var out dtos.Document
	if err := c.sendJSON(ctx, http.MethodPost, "/documents/"+url.PathEscape(id)+"/primary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
