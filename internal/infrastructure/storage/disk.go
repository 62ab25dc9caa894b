package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
)

// DiskStore persists resumes on the local filesystem. The ref is the stored
// filename: "<random-id>_<sanitized-original-name>".
type DiskStore struct {
	dir    string
	logger zerolog.Logger
}

func NewDiskStore(dir string, logger zerolog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resume dir: %w", err)
	}
	return &DiskStore{dir: dir, logger: logger}, nil
}

func (s *DiskStore) Store(ctx context.Context, r io.Reader, size int64, filename, mimeType string) (*ports.StoredResume, error) {
	if err := validateUpload(size, mimeType); err != nil {
		return nil, err
	}

	ref := artifactID() + "_" + sanitizeFilename(filename)
	path := filepath.Join(s.dir, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create resume file: %w", err)
	}

	// Re-check the size cap while copying: the declared size is not trusted.
	n, err := io.Copy(f, io.LimitReader(r, ports.MaxResumeSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > ports.MaxResumeSize {
		err = domain.ErrPayloadTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, domain.ErrPayloadTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write resume file: %w", err)
	}

	s.logger.Debug().Str("ref", ref).Int64("bytes", n).Msg("resume stored on disk")
	return &ports.StoredResume{Ref: ref, Filename: sanitizeFilename(filename)}, nil
}

func (s *DiskStore) Retrieve(ctx context.Context, ref string) (*ports.ResumeContent, error) {
	// The ref is a single path element; anything else cannot have come from
	// Store and must not escape the resume directory.
	if ref == "" || ref != filepath.Base(ref) {
		return nil, domain.ErrResumeNotFound
	}

	path := filepath.Join(s.dir, ref)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrResumeNotFound
		}
		return nil, fmt.Errorf("open resume file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat resume file: %w", err)
	}

	return &ports.ResumeContent{
		Body:        f,
		ContentType: ports.ResumeContentType,
		Filename:    downloadName(ref),
		Size:        info.Size(),
	}, nil
}

// downloadName strips the random id prefix, recovering the original name.
func downloadName(ref string) string {
	if _, name, ok := strings.Cut(ref, "_"); ok && name != "" {
		return name
	}
	return "resume.pdf"
}

// artifactID returns a 16-hex-char random identifier.
func artifactID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%016x", os.Getpid())
	}
	return fmt.Sprintf("%x", b)
}
