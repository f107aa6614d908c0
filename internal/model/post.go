package model

import (
	"strings"
	"time"
)

// FileType classifies an uploaded binary as image or video.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// FileTypeFromContentType derives the file type from a MIME content type.
// The check is purely prefix-based; anything that is not "video/*"
// (including a missing or malformed content type) is an image.
func FileTypeFromContentType(contentType string) FileType {
	if strings.HasPrefix(contentType, "video/") {
		return FileTypeVideo
	}
	return FileTypeImage
}

// Post represents one published media item.
// This is a pure domain model with no database-specific dependencies or tags.
// URL, FileType and FileName are set once at creation and never mutated;
// deletion is the only change to the set of posts.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}
