// Package docfile moves visa documents between browser and backend:
// reading a multipart upload and streaming a downloaded file back.
package docfile

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/domain/models"
)

var (
	ErrNoFile   = errors.New("docfile: no file uploaded")
	ErrTooLarge = errors.New("docfile: file too large")
	ErrType     = errors.New("docfile: file type not allowed")
)

// Allowed content types, sniffed from the file body.
var allowed = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// Read parses a multipart request and returns the file posted in field.
// The body is capped at limits.MaxUploadSize.
func Read(w http.ResponseWriter, r *http.Request, field string) (models.FileUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadSize)
	if err := r.ParseMultipartForm(limits.MaxUploadMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			return models.FileUpload{}, ErrTooLarge
		}
		return models.FileUpload{}, fmt.Errorf("parse multipart form: %w", err)
	}

	f, header, err := r.FormFile(field)
	if err != nil || header == nil || header.Size == 0 {
		return models.FileUpload{}, ErrNoFile
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("read upload: %w", err)
	}

	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !allowed[ct] {
		return models.FileUpload{}, ErrType
	}

	return models.FileUpload{
		Filename:    filepath.Base(header.Filename),
		ContentType: ct,
		Data:        data,
	}, nil
}

// UserMessage maps a Read error to text for the upload form.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return "Choose a file to upload."
	case errors.Is(err, ErrTooLarge):
		return "The file is too large. The limit is 10 MB."
	case errors.Is(err, ErrType):
		return "Only PDF, PNG and JPEG files are accepted."
	default:
		return "The upload could not be read. Please try again."
	}
}

// Serve writes file as an attachment.
func Serve(w http.ResponseWriter, file models.FileUpload) {
	name := file.Filename
	if name == "" {
		name = "document"
	}
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	// Prevent browser caching; a document is relabelled on review.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
