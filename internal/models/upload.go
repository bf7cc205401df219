package models

import "io"

// UploadKind names the folder an image is stored under
type UploadKind string

const (
	UploadAvatars  UploadKind = "avatars"
	UploadArticles UploadKind = "articles"
)

// ParseUploadKind validates a kind taken from the request path
func ParseUploadKind(s string) (UploadKind, bool) {
	switch UploadKind(s) {
	case UploadAvatars, UploadArticles:
		return UploadKind(s), true
	}
	return "", false
}

// UploadFile is an image received from a multipart form
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is returned to the uploading form
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	// StoreFailed separates storage failures from rejected files
	StoreFailed bool `json:"-"`
}
