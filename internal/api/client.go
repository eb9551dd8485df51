// Package api talks to the fleet command web frontend: a healthcheck
// probe and the multipart upload of an exported patrol recording.
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/subcom/fleet/pkg/core"
)

const requestTimeout = 30 * time.Second

// Client is an HTTP client bound to one frontend instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the frontend at baseURL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Healthcheck probes the frontend's /healthcheck endpoint.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload streams the recording at filePath to the frontend together
// with the patrol metadata. The multipart body is piped so the file is
// never buffered whole in memory.
func (c *Client) Upload(filePath string, meta core.UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	formErr := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer form.Close()
		formErr <- c.writeForm(form, file, filepath.Base(filePath), meta)
	}()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/patrols/add", pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := <-formErr; err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) writeForm(form *multipart.Writer, file io.Reader, filename string, meta core.UploadMetadata) error {
	_ = form.WriteField("secret", c.apiKey)
	_ = form.WriteField("filename", filename)
	_ = form.WriteField("areaName", meta.AreaName)
	_ = form.WriteField("patrolName", meta.PatrolName)
	_ = form.WriteField("patrolDuration", fmt.Sprintf("%f", meta.PatrolDuration))
	_ = form.WriteField("tag", meta.Tag)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}
