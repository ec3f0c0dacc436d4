// Package imagestore uploads brand logos and product images to a third-party
// image host and returns their public URLs. The host is expected to expose an
// unsigned multipart upload endpoint (Cloudinary-style) that responds with a
// JSON body containing a secure_url field.
package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, filename string, content io.Reader) (string, error)
}

// Client uploads images over HTTP.
type Client struct {
	uploadURL string
	preset    string
	http      *http.Client
}

// New creates a Client for the given unsigned upload endpoint and preset.
func New(uploadURL, preset string) *Client {
	return &Client{
		uploadURL: uploadURL,
		preset:    preset,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the image as a multipart form and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, folder, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", errors.Wrap(err, "write preset field")
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", errors.Wrap(err, "write folder field")
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrap(err, "create file part")
	}
	if _, err := io.Copy(fw, content); err != nil {
		return "", errors.Wrap(err, "copy image content")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", errors.Wrap(err, "build upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "upload image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("image host returned status %d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decode upload response")
	}
	if out.SecureURL == "" {
		return "", errors.New("image host returned no URL")
	}
	return out.SecureURL, nil
}
