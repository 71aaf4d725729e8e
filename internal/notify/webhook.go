// Package notify forwards a finished run to an HTTP webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Summary is sent as the payload form field.
type Summary struct {
	Query     string    `json:"query"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// Webhook posts summaries and their artifacts as multipart forms.
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook returns a Webhook for url. An empty url yields a disabled sink.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    strings.TrimSpace(url),
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether a URL is configured.
func (w *Webhook) Enabled() bool {
	return w != nil && w.URL != ""
}

// Send posts s with files attached under the "files" field. Any non-2xx
// response is an error.
func (w *Webhook) Send(ctx context.Context, s Summary, files ...string) error {
	if !w.Enabled() {
		return nil
	}

	body, contentType, err := encode(s, files)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func encode(s Summary, files []string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payload, err := json.Marshal(s)
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("payload", string(payload)); err != nil {
		return nil, "", err
	}

	for _, path := range files {
		if err := attach(mw, path); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func attach(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read attachment %s: %w", path, err)
	}
	return nil
}
