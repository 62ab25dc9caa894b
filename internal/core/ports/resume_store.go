package ports

import (
	"context"
	"io"
)

// Resume upload constraints enforced by every store implementation.
const (
	ResumeContentType = "application/pdf"
	MaxResumeSize     = 5 << 20 // 5 MiB
)

// StoredResume is the result of persisting an uploaded resume.
type StoredResume struct {
	// Ref is the opaque reference recorded on the application. Its shape is
	// backend-specific and must never be interpreted outside the store.
	Ref      string
	Filename string
}

// ResumeContent is a retrieved resume ready to be streamed to a client.
type ResumeContent struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
	Size        int64 // -1 when the backend does not report a length
}

// ResumeStore abstracts where resume bytes live (local disk or a remote
// object store). Exactly one backend is active per process, selected by
// configuration; nothing outside the store branches on the backend.
//
// Access control is the caller's responsibility: Retrieve serves bytes for
// any valid ref.
type ResumeStore interface {
	// Store validates and durably persists an uploaded resume. Rejects
	// non-PDF content with domain.ErrUnsupportedMediaType and payloads over
	// MaxResumeSize with domain.ErrPayloadTooLarge.
	Store(ctx context.Context, r io.Reader, size int64, filename, mimeType string) (*StoredResume, error)
	// Retrieve resolves a ref to the original bytes. Returns
	// domain.ErrResumeNotFound when the ref does not resolve and
	// domain.ErrUpstreamUnavailable when a remote backend is unreachable or
	// times out.
	Retrieve(ctx context.Context, ref string) (*ResumeContent, error)
}
