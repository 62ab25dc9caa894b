// Package storage provides the resume artifact store implementations. Two
// backends (local disk and Cloudinary) exist behind the ports.ResumeStore
// interface, and exactly one is active per process, selected by
// configuration. Nothing outside this package branches on the backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
	"github.com/talentdesk/ats-system/internal/pkg/config"
)

// New builds the resume store named by cfg.Storage.Backend.
func New(cfg *config.Config, logger zerolog.Logger) (ports.ResumeStore, error) {
	switch cfg.Storage.Backend {
	case "disk", "":
		return NewDiskStore(cfg.Storage.DiskDir, logger)
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary, logger)
	default:
		return nil, fmt.Errorf("unknown resume backend %q", cfg.Storage.Backend)
	}
}

// validateUpload enforces the shared resume constraints: PDF only, at most
// ports.MaxResumeSize bytes. Size -1 means "unknown"; the stores then
// enforce the cap while reading.
func validateUpload(size int64, mimeType string) error {
	if mt := strings.ToLower(strings.TrimSpace(mimeType)); mt != ports.ResumeContentType {
		return fmt.Errorf("%w: got %q", domain.ErrUnsupportedMediaType, mimeType)
	}
	if size > ports.MaxResumeSize {
		return fmt.Errorf("%w: %d bytes", domain.ErrPayloadTooLarge, size)
	}
	return nil
}

// sanitizeFilename keeps the stored filename to a safe single path element.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	name = replacer.Replace(name)
	if name == "" || name == "." {
		name = "resume.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
