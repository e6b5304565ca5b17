// Package media handles file uploads for site content (project screenshots,
// blog images, the resume document).
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Upload kinds supported by the upload endpoint.
const (
	KindImage  = "image"
	KindResume = "resume"
)

// ErrUnsupportedType is returned when the uploaded content type is not in
// the allowlist for the requested kind.
var ErrUnsupportedType = errors.New("unsupported content type")

// ErrUnknownKind is returned for upload kinds the service does not know.
var ErrUnknownKind = errors.New("unknown upload kind")

// imageTypes lists content types accepted for general media uploads.
// PDF is included so project write-ups can be attached as documents.
var imageTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// resumeTypes lists content types accepted for the resume slot. The admin
// UI renders the resume inline as an image, so only JPG and PNG are allowed.
var resumeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Uploader stores an uploaded file and returns its permanent public URL.
type Uploader interface {
	Upload(ctx context.Context, kind, contentType string, r io.Reader, size int64) (string, error)
}

// allowedTypes returns the content-type allowlist for a kind.
func allowedTypes(kind string) (map[string]string, error) {
	switch kind {
	case KindImage:
		return imageTypes, nil
	case KindResume:
		return resumeTypes, nil
	default:
		return nil, ErrUnknownKind
	}
}

// CheckType validates a content type against the allowlist for kind and
// returns the file extension to store the object under.
func CheckType(kind, contentType string) (string, error) {
	allowed, err := allowedTypes(kind)
	if err != nil {
		return "", err
	}

	// Strip any charset or boundary parameters
	base := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	ext, ok := allowed[base]
	if !ok {
		return "", fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedType, contentType, AcceptedTypes(kind))
	}
	return ext, nil
}

// AcceptedTypes returns a comma-separated list of accepted content types
// for a kind, for error messages.
func AcceptedTypes(kind string) string {
	allowed, err := allowedTypes(kind)
	if err != nil {
		return ""
	}
	types := make([]string, 0, len(allowed))
	for t := range allowed {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
