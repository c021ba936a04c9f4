package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/ChlorophyllA/skin2/internal/model"
)

// UploadFileName is the file name the browser portal always sends to /recognize.
const UploadFileName = "skin_image.jpg"

// StatusError is returned when the portal answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal api status %d: %s", e.Code, e.Body)
}

// Client talks to the portal HTTP API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New constructs a Client.
// base := "http://localhost:8080" (no trailing slash required).
// timeout bounds each request.
func New(base string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", base)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL // copy
	u.Path = path.Join(c.baseURL.Path, p)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Levels calls GET /api/levels.
func (c *Client) Levels(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, c.endpoint("/api/levels", nil), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Suggestions calls GET /api/suggestions.
func (c *Client) Suggestions(ctx context.Context, field, q string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("field", field)
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))

	var out []string
	if err := c.getJSON(ctx, c.endpoint("/api/suggestions", query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cities calls GET /api/cities. An empty province lists every city.
func (c *Client) Cities(ctx context.Context, province string) ([]string, error) {
	query := url.Values{}
	query.Set("province", province)

	var out []string
	if err := c.getJSON(ctx, c.endpoint("/api/cities", query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search calls POST /api/search.
func (c *Client) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/search", nil), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out model.SearchResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recognize posts an image to /recognize as multipart field "image".
func (c *Client) Recognize(ctx context.Context, image []byte) (*model.RecognitionResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", UploadFileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/recognize", nil), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out model.RecognitionResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
