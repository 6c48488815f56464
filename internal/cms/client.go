// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cms reads website sections from a headless CMS that exposes a
// Sanity-compatible query API.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config identifies a CMS project.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	// BaseURL overrides the project API host.
	BaseURL string
}

// Client runs read queries against the CMS.
type Client struct {
	config Config
	client *http.Client
}

// NewClient returns a Client for cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-200 answer from the query API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms API error (status %d): %s", e.StatusCode, e.Message)
}

// Query runs query with params and decodes the result into out. Params are
// sent JSON-encoded as $name query arguments.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", query)
	for name, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cms encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(b))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.config.BaseURL, c.config.APIVersion, url.PathEscape(c.config.Dataset), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cms request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cms http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cms read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("cms unmarshal: %w", err)
	}
	if out == nil {
		return nil
	}
	if len(envelope.Result) == 0 {
		envelope.Result = json.RawMessage("null")
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("cms decode result: %w", err)
	}
	return nil
}

// errorMessage pulls the human-readable message out of an error body.
func errorMessage(status int, body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error.Description != "" {
			return e.Error.Description
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(status)
	}
	return msg
}
