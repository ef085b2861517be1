package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	clipdropURL      = "https://clipdrop-api.co/text-to-image/v1"
	maxErrorBodySize = 512
	maxImageSize     = 20 << 20
)

type ClipdropClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

type ClipdropOption func(*ClipdropClient)

func WithClipdropURL(url string) ClipdropOption {
	return func(c *ClipdropClient) {
		c.baseURL = url
	}
}

func WithHTTPClient(client *http.Client) ClipdropOption {
	return func(c *ClipdropClient) {
		c.httpClient = client
	}
}

func NewClipdropClient(apiKey string, opts ...ClipdropOption) *ClipdropClient {
	c := &ClipdropClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		baseURL: clipdropURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClipdropClient) Name() string {
	return "clipdrop"
}

func (c *ClipdropClient) Generate(ctx context.Context, prompt string) (*Image, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("clipdrop API error: status %d, body: %s", resp.StatusCode, string(excerpt))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipdrop returned an empty image")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &Image{Data: data, MIMEType: mime}, nil
}
