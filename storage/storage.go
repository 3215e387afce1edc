// Package storage persists rendered chart artifacts to a local directory or an
// S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrInvalidURI     = errors.New("invalid storage location")
)

// Store writes and reads artifacts by slash-separated key.
type Store interface {
	// Put writes data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the object stored under key or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys under prefix, relative to the store root.
	List(ctx context.Context, prefix string) ([]string, error)

	// Location is a human-readable root: a directory or s3://bucket/prefix.
	Location() string
}

// Open resolves a location into a Store. "s3://bucket/prefix" opens an S3
// store with cfg; anything else is a local directory.
func Open(ctx context.Context, location string, cfg S3Config) (Store, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrInvalidURI)
	}
	if !strings.HasPrefix(location, "s3://") {
		return NewLocalStore(location), nil
	}

	bucket, prefix, err := ParseS3URI(location)
	if err != nil {
		return nil, err
	}
	cfg.Prefix = prefix
	return NewS3Store(ctx, bucket, cfg)
}

// ParseS3URI splits "s3://bucket/some/prefix" into bucket and prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an s3:// URI", ErrInvalidURI, uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q has no bucket", ErrInvalidURI, uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// ContentType returns the MIME type for an artifact extension.
func ContentType(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "pdf":
		return "application/pdf"
	case "eps":
		return "application/postscript"
	case "tif", "tiff":
		return "image/tiff"
	case "json":
		return "application/json"
	case "md":
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
