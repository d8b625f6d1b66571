package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/modules/events"
)

var ErrNotFound = errors.New("event not found")

// APIError is a non-2xx answer carrying the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

// LocalFile is a file read from disk for a multipart submission.
type LocalFile struct {
	Name    string
	Content []byte
}

// Media groups files to upload with a form submission.
type Media struct {
	Banner []LocalFile
	Images []LocalFile
}

func (m Media) empty() bool { return len(m.Banner) == 0 && len(m.Images) == 0 }

// Client talks to the eventadmin HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/") + "/api/v1", http: httpClient}
}

func (c *Client) ListEvents(ctx context.Context) ([]event.Event, error) {
	var out []event.Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent returns nil when the event does not exist.
func (c *Client) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	var out event.Event
	err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, "", &out)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NewForm(ctx context.Context) (events.FormValues, error) {
	var out events.FormResponse
	err := c.do(ctx, http.MethodGet, "/events/new", nil, "", &out)
	return out.Values, err
}

func (c *Client) EditForm(ctx context.Context, id string) (events.FormValues, error) {
	var out events.FormResponse
	err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id)+"/form", nil, "", &out)
	if isStatus(err, http.StatusNotFound) {
		return events.FormValues{}, ErrNotFound
	}
	return out.Values, err
}

func (c *Client) CreateEvent(ctx context.Context, values events.FormValues, media Media) (*events.Submission, error) {
	return c.submit(ctx, http.MethodPost, "/events", values, media)
}

func (c *Client) UpdateEvent(ctx context.Context, id string, values events.FormValues, media Media) (*events.Submission, error) {
	sub, err := c.submit(ctx, http.MethodPut, "/events/"+url.PathEscape(id), values, media)
	if isStatus(err, http.StatusNotFound) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (c *Client) PatchEvent(ctx context.Context, id string, p event.Patch) (*event.Event, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out event.Event
	err = c.do(ctx, http.MethodPatch, "/events/"+url.PathEscape(id), bytes.NewReader(body), "application/json", &out)
	if isStatus(err, http.StatusNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteEvent reports false when the event was already gone.
func (c *Client) DeleteEvent(ctx context.Context, id string) (bool, error) {
	var out events.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id)+"?confirm=true", nil, "", &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (c *Client) submit(ctx context.Context, method, path string, values events.FormValues, media Media) (*events.Submission, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader = bytes.NewReader(payload)
		contentType           = "application/json"
	)
	if !media.empty() {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := w.WriteField("payload", string(payload)); err != nil {
			return nil, err
		}
		if err := writeFiles(w, "banner", media.Banner); err != nil {
			return nil, err
		}
		if err := writeFiles(w, "images", media.Images); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		body, contentType = &buf, w.FormDataContentType()
	}

	var out events.Submission
	if err := c.do(ctx, method, path, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeFiles(w *multipart.Writer, field string, files []LocalFile) error {
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Content); err != nil {
			return err
		}
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "BAD_RESPONSE", Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code, apiErr.Message, apiErr.Details = env.Error.Code, env.Error.Message, env.Error.Details
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
