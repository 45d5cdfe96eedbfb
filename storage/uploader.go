// Package storage abstracts object storage for user avatars and race track
// images.
package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	// PublicURL returns the browser-facing URL for a stored key, or "" if one
	// cannot be built.
	PublicURL(key string) string
}
