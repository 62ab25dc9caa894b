package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/talentdesk/ats-system/internal/core/domain"
	"github.com/talentdesk/ats-system/internal/core/ports"
	"github.com/talentdesk/ats-system/internal/pkg/config"
)

const (
	uploadTimeout   = 20 * time.Second
	retrieveTimeout = 15 * time.Second
)

// CloudinaryStore persists resumes as raw resources in Cloudinary. The ref
// is the secure delivery URL; retrieval fetches and proxies the bytes so the
// backend URL shape never leaks to clients.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	client *http.Client
	logger zerolog.Logger
}

func NewCloudinaryStore(cfg config.CloudinaryConfig, logger zerolog.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{
		cld:    cld,
		folder: cfg.Folder,
		client: &http.Client{Timeout: retrieveTimeout},
		logger: logger,
	}, nil
}

func (s *CloudinaryStore) Store(ctx context.Context, r io.Reader, size int64, filename, mimeType string) (*ports.StoredResume, error) {
	if err := validateUpload(size, mimeType); err != nil {
		return nil, err
	}

	stored := sanitizeFilename(filename)
	publicID := artifactID() + "_" + stored

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	res, err := s.cld.Upload.Upload(ctx, io.LimitReader(r, ports.MaxResumeSize+1), uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	s.logger.Debug().Str("public_id", res.PublicID).Msg("resume uploaded to cloudinary")
	return &ports.StoredResume{Ref: res.SecureURL, Filename: stored}, nil
}

func (s *CloudinaryStore) Retrieve(ctx context.Context, ref string) (*ports.ResumeContent, error) {
	if !strings.HasPrefix(ref, "https://") && !strings.HasPrefix(ref, "http://") {
		return nil, domain.ErrResumeNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, domain.ErrResumeNotFound
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, domain.ErrResumeNotFound
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	size := resp.ContentLength // -1 when the backend does not report it
	return &ports.ResumeContent{
		Body:        resp.Body,
		ContentType: ports.ResumeContentType,
		Filename:    downloadName(path.Base(req.URL.Path)),
		Size:        size,
	}, nil
}
