package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
)

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_\-=]`)

// Validator validates file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUpload checks batch-level limits. Per-file size is reported
// as a per-file outcome by ingestion, not rejected here.
func (v *Validator) ValidateUpload(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return entity.ErrNoFiles
	}

	if len(files) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: maximum %d files allowed, got %d", entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(files))
	}

	return nil
}

// FileTooLarge reports whether size exceeds the per-file limit
func (v *Validator) FileTooLarge(size int64) bool {
	return v.cfg.MaxFileSize > 0 && size > v.cfg.MaxFileSize
}

// Extension returns the lower-cased extension of filename, dot included
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// SafeBase strips directory and extension from filename and replaces
// characters that are not allowed in record IDs with '-'
func SafeBase(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "file"
	}
	return unsafeIDChars.ReplaceAllString(base, "-")
}
