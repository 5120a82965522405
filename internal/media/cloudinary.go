package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jtorres/go-chatline/internal/config"
)

const defaultBaseUrl = "https://api.cloudinary.com/v1_1"

// uploadTimeout bounds a single provider round trip so a wedged upload
// cannot hold an ingestion goroutine forever.
const uploadTimeout = 60 * time.Second

type CloudinaryUploader struct {
	log        *log.Logger
	cloudName  string
	apiKey     string
	apiSecret  string
	baseUrl    string
	httpClient *http.Client
}

func NewCloudinaryUploader(logger *log.Logger, cfg config.MediaConfig) (*CloudinaryUploader, error) {
	if cfg.CloudName == "" || cfg.ApiKey == "" || cfg.ApiSecret == "" {
		return nil, fmt.Errorf("incomplete media upload credentials")
	}

	return &CloudinaryUploader{
		log:       logger,
		cloudName: cfg.CloudName,
		apiKey:    cfg.ApiKey,
		apiSecret: cfg.ApiSecret,
		baseUrl:   defaultBaseUrl,
		httpClient: &http.Client{
			Timeout: uploadTimeout,
		},
	}, nil
}

// Upload stores the payload with the provider using a signed multipart POST
// and auto resource-type detection.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, mimeType string) (Upload, error) {
	publicId := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"api_key":   u.apiKey,
		"public_id": publicId,
		"timestamp": timestamp,
		"signature": u.signature(publicId, timestamp),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return Upload{}, fmt.Errorf("write form field: %w", err)
		}
	}

	part, err := mw.CreateFormFile("file", publicId)
	if err != nil {
		return Upload{}, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Upload{}, fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Upload{}, fmt.Errorf("finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/auto/upload", u.baseUrl, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return Upload{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	u.log.Printf("uploading %d bytes (%s) as %q", len(data), mimeType, publicId)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return Upload{}, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Upload{}, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, respBody)
	}

	var result Upload
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Upload{}, fmt.Errorf("decode upload response: %w", err)
	}

	if result.SecureUrl == "" {
		return Upload{}, fmt.Errorf("upload response missing secure url")
	}

	return result, nil
}

// signature signs the request parameters the way the provider expects:
// hex-encoded SHA-1 over the sorted parameter string plus the API secret.
func (u *CloudinaryUploader) signature(publicId, timestamp string) string {
	toSign := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicId, timestamp, u.apiSecret)
	sum := sha1.Sum([]byte(toSign))
	return hex.EncodeToString(sum[:])
}
