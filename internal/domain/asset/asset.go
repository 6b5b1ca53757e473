package asset

import (
	"path/filepath"
	"strings"
	"time"
)

// Type is the media class of an asset.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"

	videoMIMEPrefix = "video/"
)

// Asset is one stored media object owned by exactly one client.
// Assets are immutable once created; they are only ever deleted.
type Asset struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	Type       Type      `json:"type"`
	URL        string    `json:"url"`
	Format     string    `json:"format"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	StorageKey string    `json:"-"`
}

type CreateAssetInput struct {
	OwnerID    string `json:"ownerId"`
	Title      string `json:"title"`
	Type       Type   `json:"type"`
	URL        string `json:"url"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
	StorageKey string `json:"-"`
}

// Classify maps a MIME type to an asset type: video/* is a video, anything
// else (including an empty or malformed value) is an image.
func Classify(mimeType string) Type {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), videoMIMEPrefix) {
		return TypeVideo
	}
	return TypeImage
}

// Format returns the lower-cased file extension without the leading dot.
func Format(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

func (t Type) Valid() bool {
	return t == TypeImage || t == TypeVideo
}
