// Package ocr talks to an external OCR engine over HTTP.
package ocr

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

	"PropScanner/internal/ports"
)

// Client uploads slip images to the OCR service and returns recognized text.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SlipReader = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type readResponse struct {
	Lines []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"lines"`
}

// ReadSlip uploads one image and returns the engine's line-by-line output.
// The joined Text keeps line order, which the extractor's span scan relies on.
func (c *Client) ReadSlip(ctx context.Context, imagePath string) (ports.SlipText, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return ports.SlipText{}, fmt.Errorf("read image %s: %w", imagePath, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return ports.SlipText{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return ports.SlipText{}, fmt.Errorf("write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ports.SlipText{}, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/read", &body)
	if err != nil {
		return ports.SlipText{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.SlipText{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ports.SlipText{}, fmt.Errorf("ocr error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed readResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.SlipText{}, fmt.Errorf("decode response: %w", err)
	}

	out := ports.SlipText{Lines: make([]ports.SlipLine, 0, len(parsed.Lines))}
	texts := make([]string, 0, len(parsed.Lines))
	for _, line := range parsed.Lines {
		out.Lines = append(out.Lines, ports.SlipLine{Text: line.Text, Confidence: line.Confidence})
		texts = append(texts, line.Text)
	}
	out.Text = strings.Join(texts, " ")
	return out, nil
}
