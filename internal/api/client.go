package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultEndpoint = "http://localhost:5000"

	defaultHTTPTimeout     = 2 * time.Minute
	maxErrorBodyBytes      = 512
	maxResponseBodyBytes   = 4 << 20
	submitResponseField    = "response"
	questionsResponseField = "questions"
)

// ErrInvalidPayload reports a 2xx response that lacks the expected text field.
var ErrInvalidPayload = errors.New("response payload missing text field")

// StatusError is returned for any non-2xx HTTP status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("whatif API error: %s", e.Status)
	}
	return fmt.Sprintf("whatif API error: %s (%s)", e.Status, e.Body)
}

// RateLimited reports whether the server rejected the request for exceeding
// its rate limit.
func (e *StatusError) RateLimited() bool {
	return e.Code == http.StatusTooManyRequests
}

// Client talks to a WhatIf service over HTTP.
type Client struct {
	base   string
	client *http.Client
}

// NewClient returns a client rooted at endpoint. A nil httpClient gets a
// generous timeout since generations can take a while.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{base: endpoint, client: httpClient}
}

// Endpoint returns the service base URL.
func (c *Client) Endpoint() string {
	return c.base
}

// Submit posts question and returns the narrative text.
func (c *Client) Submit(ctx context.Context, question string) (string, error) {
	buf, err := json.Marshal(SubmitRequest{Question: question})
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, http.MethodPost, PathSubmit, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	field := gjson.GetBytes(body, submitResponseField)
	if !gjson.ValidBytes(body) || field.Type != gjson.String {
		return "", ErrInvalidPayload
	}
	return field.String(), nil
}

// Inspiration returns the most frequently asked questions.
func (c *Client) Inspiration(ctx context.Context) ([]Inspiration, error) {
	body, err := c.do(ctx, http.MethodGet, PathInspiration, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, questionsResponseField).IsArray() {
		return nil, ErrInvalidPayload
	}
	var parsed InspirationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode inspiration questions: %w", err)
	}
	return parsed.Questions, nil
}

// Background returns a random sample of previously asked prompts.
func (c *Client) Background(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, PathBackground, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, questionsResponseField).IsArray() {
		return nil, ErrInvalidPayload
	}
	var parsed BackgroundResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode background questions: %w", err)
	}
	return parsed.Questions, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: errorMessage(raw)}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
}

func errorMessage(raw []byte) string {
	if msg := gjson.GetBytes(raw, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return strings.TrimSpace(string(raw))
}
