package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jtorres/go-chatline/internal/config"
	"github.com/jtorres/go-chatline/internal/testutil"
	"github.com/jtorres/go-chatline/internal/types"
	"github.com/stretchr/testify/assert"
)

func newTestUploader(t *testing.T, handler http.HandlerFunc) *CloudinaryUploader {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := NewCloudinaryUploader(testutil.TestLogger(t), config.MediaConfig{
		CloudName: "demo",
		ApiKey:    "key",
		ApiSecret: "secret",
	})
	if err != nil {
		t.Fatalf("new uploader: %v", err)
	}
	u.baseUrl = srv.URL
	return u
}

func TestDetectMediaType(t *testing.T) {
	tcases := []struct {
		mimeType string
		expected types.MediaType
	}{
		{"image/png", types.MediaImage},
		{"image/jpeg", types.MediaImage},
		{"video/mp4", types.MediaVideo},
		{"application/pdf", types.MediaFile},
		{"", types.MediaFile},
	}

	for _, tc := range tcases {
		t.Run(tc.mimeType, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectMediaType(tc.mimeType), "expected media type for %q", tc.mimeType)
		})
	}
}

func TestCloudinaryUploader_Upload(t *testing.T) {
	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "expected multipart POST")
		assert.Equal(t, "/demo/auto/upload", r.URL.Path, "expected auto resource-type upload path")

		assert.NoError(t, r.ParseMultipartForm(1<<20), "expected parsable multipart form")
		assert.Equal(t, "key", r.FormValue("api_key"), "expected api key field")
		assert.NotEmpty(t, r.FormValue("signature"), "expected request to be signed")
		assert.NotEmpty(t, r.FormValue("public_id"), "expected a generated public id")

		json.NewEncoder(w).Encode(Upload{
			SecureUrl:    "https://cdn.example.com/demo/abc.png",
			ResourceType: "image",
		})
	})

	up, err := u.Upload(context.Background(), []byte("fake-png-bytes"), "image/png")
	assert.NoError(t, err, "expected upload to succeed")
	assert.Equal(t, "https://cdn.example.com/demo/abc.png", up.SecureUrl, "expected secure url from provider")
	assert.Equal(t, "image", up.ResourceType, "expected resource type from provider")
}

func TestCloudinaryUploader_UploadFailure(t *testing.T) {
	tcases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"invalid signature"}}`, http.StatusUnauthorized)
			},
		},
		{
			name: "missing secure url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(Upload{})
			},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			u := newTestUploader(t, tc.handler)
			_, err := u.Upload(context.Background(), []byte("payload"), "image/png")
			assert.Error(t, err, "expected upload error")
		})
	}
}

func TestNewCloudinaryUploader_RequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryUploader(nil, config.MediaConfig{CloudName: "demo"})
	assert.Error(t, err, "expected error for incomplete credentials")
}
