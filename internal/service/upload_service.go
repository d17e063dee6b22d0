package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iticket/helpdesk/internal/config"
	apperrors "github.com/iticket/helpdesk/pkg/util"
)

// allowedExtensions is the upload allow-list; everything else is rejected.
var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".pdf":  {},
	".docx": {},
}

// StoredFile describes where an accepted upload landed.
type StoredFile struct {
	Name      string
	StoredAs  string
	Path      string
	PublicURL string
	Size      int64
}

// UploadService validates uploads and allocates local-disk destinations
// under a generated UUID filename.
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService constructs the service and ensures the target directory
// exists.
func NewUploadService(cfg config.UploadConfig) (*UploadService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadService{cfg: cfg}, nil
}

// Prepare checks the filename against the allow-list and the size limit and
// returns the destination the handler should save the file to.
func (s *UploadService) Prepare(filename string, size int64) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, apperrors.NewValidationError("file type not allowed",
			map[string]any{"extension": ext, "allowed": AllowedExtensions()})
	}
	if s.cfg.MaxSizeBytes > 0 && size > s.cfg.MaxSizeBytes {
		return nil, apperrors.NewValidationError("file too large",
			map[string]any{"size": size, "max": s.cfg.MaxSizeBytes})
	}

	storedAs := uuid.NewString() + ext
	return &StoredFile{
		Name:      filepath.Base(filename),
		StoredAs:  storedAs,
		Path:      filepath.Join(s.cfg.Dir, storedAs),
		PublicURL: strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + storedAs,
		Size:      size,
	}, nil
}

// Dir returns the local storage directory, for static file serving.
func (s *UploadService) Dir() string {
	return s.cfg.Dir
}

// AllowedExtensions lists the accepted file extensions.
func AllowedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".pdf", ".docx"}
}
