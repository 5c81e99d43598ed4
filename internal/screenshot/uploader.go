package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultUploadURL is the screenshot ingestion endpoint.
const DefaultUploadURL = "http://localhost:9000/employee/upload-screenshot"

// HTTPUploader sends one screenshot per multipart POST. It never retries.
type HTTPUploader struct {
	url        string
	httpClient *http.Client
}

func NewHTTPUploader(url string, timeout time.Duration) *HTTPUploader {
	if url == "" {
		url = DefaultUploadURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPUploader{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload posts data as the "file" field of a multipart form.
func (u *HTTPUploader) Upload(ctx context.Context, data []byte, filename, token string) error {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "image/png")

	part, err := mw.CreatePart(header)
	if err != nil {
		return errors.Wrap(err, "failed to create multipart part")
	}
	if _, err := part.Write(data); err != nil {
		return errors.Wrap(err, "failed to write multipart body")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "failed to finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
