package adapter

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
	"time"

	"github.com/ChlorophyllA/skin2/internal/model"
)

// Recognizer is the interface the rest of the app depends on.
type Recognizer interface {
	// Predict runs the lesion detector on an image. Detections come back in
	// the order the model produced them.
	Predict(ctx context.Context, filename string, image []byte) (*Prediction, error)
}

// Prediction is what the inference service returns.
type Prediction struct {
	Detections     []model.Detection `json:"detections"`
	AnnotatedImage string            `json:"annotated_image"` // base64, no data-url prefix
}

// RecognizerAdapter calls the inference service over HTTP.
type RecognizerAdapter struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewRecognizerAdapter constructs a RecognizerAdapter.
// base := "http://localhost:5001" (no trailing slash required).
// timeout controls the HTTP client request timeout.
func NewRecognizerAdapter(base string, timeout time.Duration) (*RecognizerAdapter, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", base)
	}
	return &RecognizerAdapter{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Predict implements Recognizer.
func (a *RecognizerAdapter) Predict(ctx context.Context, filename string, image []byte) (*Prediction, error) {
	// build URL: base + /predict
	u := *a.baseURL // copy
	u.Path = path.Join(a.baseURL.Path, "predict")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("recognizer status %d: %s", resp.StatusCode, string(body))
	}

	var p Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &p, nil
}
