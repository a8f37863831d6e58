// internal/domain/upload/entity.go
package upload

import "github.com/optommarket/backend/internal/pkg/apperror"

var (
	ErrNoFile           = apperror.Validation("no file provided")
	ErrFileTooLarge     = apperror.New(apperror.KindValidation, "FILE_TOO_LARGE", "file exceeds the maximum upload size")
	ErrInvalidExtension = apperror.New(apperror.KindValidation, "INVALID_FILE_TYPE", "file type is not allowed")
)

// File describes a stored upload
type File struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}
