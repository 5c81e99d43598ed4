package screenshot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPUploaderSendsMultipart(t *testing.T) {
	var (
		gotAuth     string
		gotFilename string
		gotType     string
		gotBody     []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		gotFilename = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(file)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, time.Second)
	err := u.Upload(context.Background(), []byte("\x89PNG fake"), "shot_42.png", "secret")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "shot_42.png", gotFilename)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("\x89PNG fake"), gotBody)
}

func TestHTTPUploaderStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"unauthorized", http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := NewHTTPUploader(srv.URL, time.Second).Upload(context.Background(), []byte("x"), "shot_1.png", "t")

			var status *StatusError
			require.ErrorAs(t, err, &status)
			assert.Equal(t, tt.status, status.StatusCode)
			assert.Equal(t, "nope", status.Body)
			assert.Equal(t, int32(1), calls.Load(), "uploads are never retried")
		})
	}
}

func TestHTTPUploaderConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPUploader(url, time.Second).Upload(context.Background(), []byte("x"), "shot_1.png", "t")
	assert.Error(t, err)
}

func TestNewHTTPUploaderDefaults(t *testing.T) {
	u := NewHTTPUploader("", 0)
	assert.Equal(t, DefaultUploadURL, u.url)
	assert.Equal(t, 30*time.Second, u.httpClient.Timeout)
}
