// Package media handles uploading message and status attachments to the
// media-storage provider.
package media

import (
	"context"
	"strings"

	"github.com/jtorres/go-chatline/internal/types"
)

// Upload is the provider's record of a stored attachment.
type Upload struct {
	SecureUrl    string `json:"secure_url"`
	ResourceType string `json:"resource_type"`
}

type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string) (Upload, error)
}

// DetectMediaType classifies an attachment by its MIME type. Anything that is
// neither an image nor a video is delivered as a generic file.
func DetectMediaType(mimeType string) types.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image"):
		return types.MediaImage
	case strings.HasPrefix(mimeType, "video"):
		return types.MediaVideo
	default:
		return types.MediaFile
	}
}
