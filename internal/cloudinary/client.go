package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/lifeevents/les/internal/config"
)

const defaultBaseURL = "https://api.cloudinary.com"

// Client uploads images to Cloudinary with an unsigned upload preset.
type Client struct {
	cloudName    string
	uploadPreset string
	baseURL      string
	httpClient   *http.Client
}

// NewClient creates a Cloudinary client from config.
func NewClient(cfg config.CloudinaryConfig) *Client {
	return &Client{
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		baseURL:      defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether uploads can be performed.
func (c *Client) Configured() bool {
	return c.cloudName != "" && c.uploadPreset != ""
}

// UploadImage uploads one image into a folder and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader, folder string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("cloudinary is not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	if folder != "" {
		if err := writer.WriteField("folder", folder); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", strings.TrimSuffix(c.baseURL, "/"), c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode cloudinary response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if result.Error.Message != "" {
			return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
		}
		return "", fmt.Errorf("cloudinary: upload failed with status %d", resp.StatusCode)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary: no URL returned")
	}

	return result.SecureURL, nil
}
