package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageResult is the normalized output of an image generation call: either a
// URL the service hosts, or the raw bytes it returned inline. Exactly one of
// the two is set.
type ImageResult struct {
	URL  string
	Data []byte
}

// ImageClient calls the generative image service.
type ImageClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewImageClient creates an image client for the given default model.
func NewImageClient(baseURL, apiKey, model string) *ImageClient {
	return &ImageClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate requests one image for the prompt and normalizes the response.
func (c *ImageClient) Generate(ctx context.Context, prompt, size, quality string) (ImageResult, error) {
	req := imageRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           size,
		Quality:        quality,
		ResponseFormat: "b64_json",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return ImageResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return ImageResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ImageResult{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImageResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ImageResult{}, fmt.Errorf("%w: status %d: %.200s", ErrServiceUnavailable, resp.StatusCode, respBody)
	}

	var img imageResponse
	if err := json.Unmarshal(respBody, &img); err != nil {
		return ImageResult{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(img.Data) == 0 {
		return ImageResult{}, fmt.Errorf("%w: empty image data", ErrServiceUnavailable)
	}

	entry := img.Data[0]
	if entry.B64JSON != "" {
		raw, err := base64.StdEncoding.DecodeString(entry.B64JSON)
		if err != nil {
			return ImageResult{}, fmt.Errorf("decode image bytes: %w", err)
		}
		return ImageResult{Data: raw}, nil
	}
	if entry.URL != "" {
		return ImageResult{URL: entry.URL}, nil
	}
	return ImageResult{}, fmt.Errorf("%w: image entry has neither url nor bytes", ErrServiceUnavailable)
}

// Fetch downloads image bytes from a service-hosted URL, for responses that
// return a URL instead of inline bytes.
func (c *ImageClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching image: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
