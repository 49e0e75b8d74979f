// Package client is a typed HTTP gateway to the gradebook API
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is returned for every failed call. Message is the server's message
// when it sent one, otherwise a fallback naming the action.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	fallback string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// send performs r and returns the response with its body read. Non-2xx
// answers become *APIError.
func (c *Client) send(ctx context.Context, s *Session, r request) (*http.Response, []byte, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, nil, &APIError{Message: r.fallback, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reader)
	if err != nil {
		return nil, nil, &APIError{Message: r.fallback, Err: err}
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := s.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &APIError{Message: r.fallback, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &APIError{Status: resp.StatusCode, Message: r.fallback, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: r.fallback}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			apiErr.Message = eb.Message
		}
		return nil, nil, apiErr
	}

	return resp, data, nil
}

// call performs r and decodes the JSON answer into T
func call[T any](ctx context.Context, c *Client, s *Session, r request) (*T, error) {
	resp, data, err := c.send(ctx, s, r)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: r.fallback, Err: err}
	}
	return &out, nil
}

// exec performs r and discards the answer body
func (c *Client) exec(ctx context.Context, s *Session, r request) error {
	_, _, err := c.send(ctx, s, r)
	return err
}

// PageOptions selects a page of a listing
type PageOptions struct {
	Page int
	Size int
	Sort []string
}

func (p PageOptions) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	for _, s := range p.Sort {
		q.Add("sort", s)
	}
	return q
}

// WithSort copies the page and sort of a SortState into p
func (p PageOptions) WithSort(s SortState) PageOptions {
	p.Page = s.Page
	p.Sort = s.Params()
	return p
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setFloat(q url.Values, key string, value *float64) {
	if value != nil {
		q.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}
