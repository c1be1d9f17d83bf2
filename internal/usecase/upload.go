package usecase

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"jobboard/internal/domain"
)

// MaxResumeSize is the upload ceiling, 5 MiB.
const MaxResumeSize = 5 << 20

var allowedResumeExt = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ValidateResume gates an uploaded file before anything is persisted. It
// checks presence, the extension allow-list and the size ceiling, in that
// order.
func ValidateResume(fh *multipart.FileHeader) error {
	if fh == nil {
		return domain.ErrMissingFile
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedResumeExt[ext] {
		return domain.ErrUnsupportedFileType
	}

	if fh.Size > MaxResumeSize {
		return domain.ErrFileTooLarge
	}

	return nil
}
