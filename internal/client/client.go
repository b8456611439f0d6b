// Package client talks to the calendar HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lomoval/weekcal/api"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned for every non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("calendar api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("calendar api: status %d: %s", e.StatusCode, e.Message)
}

type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft is a new event, empty optional members are not sent.
type Draft struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       string
}

// Patch is a partial update, nil members are not sent.
type Patch struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
	Color       *string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:3002/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns events overlapping [start:end).
func (c *Client) List(ctx context.Context, start, end time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("start", api.FormatTime(start))
	q.Set("end", api.FormatTime(end))

	var events []api.Event
	if err := c.do(ctx, http.MethodGet, "/event?"+q.Encode(), nil, &events); err != nil {
		return nil, err
	}
	return fromAPIList(events)
}

func (c *Client) Create(ctx context.Context, d Draft) (Event, error) {
	body := api.EventCreate{
		Title: d.Title,
		Start: api.FormatTime(d.Start),
		End:   api.FormatTime(d.End),
	}
	if d.Description != "" {
		body.Description = &d.Description
	}
	if d.Color != "" {
		body.Color = &d.Color
	}

	var resp api.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/event", body, &resp); err != nil {
		return Event{}, err
	}
	return fromAPI(resp.Data)
}

func (c *Client) Update(ctx context.Context, id string, p Patch) (Event, error) {
	body := api.EventPatch{Title: p.Title, Description: p.Description, Color: p.Color}
	if p.Start != nil {
		s := api.FormatTime(*p.Start)
		body.Start = &s
	}
	if p.End != nil {
		e := api.FormatTime(*p.End)
		body.End = &e
	}

	var resp api.Event
	if err := c.do(ctx, http.MethodPut, "/event/"+url.PathEscape(id), body, &resp); err != nil {
		return Event{}, err
	}
	return fromAPI(resp)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/event/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg api.MessageResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &msg) != nil {
			msg.Message = strings.TrimSpace(string(data))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func fromAPI(e api.Event) (Event, error) {
	ev := Event{ID: e.ID, Title: e.Title, Description: e.Description, Color: e.Color}
	var err error
	if ev.Start, err = parseTime(e.Start); err != nil {
		return Event{}, err
	}
	if ev.End, err = parseTime(e.End); err != nil {
		return Event{}, err
	}
	if ev.CreatedAt, err = parseTime(e.CreatedAt); err != nil {
		return Event{}, err
	}
	if ev.UpdatedAt, err = parseTime(e.UpdatedAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func fromAPIList(events []api.Event) ([]Event, error) {
	result := make([]Event, 0, len(events))
	for _, e := range events {
		ev, err := fromAPI(e)
		if err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}
