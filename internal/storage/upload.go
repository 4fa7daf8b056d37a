package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

var (
	ImageTypes  = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp"}
	PermitTypes = map[string]string{"application/pdf": ".pdf", "image/jpeg": ".jpg", "image/png": ".png"}
)

// SniffUpload checks the size limit and detects the content type from the
// first bytes rather than trusting the client header. It returns the detected
// MIME type and the matching file extension.
func SniffUpload(fh *multipart.FileHeader, maxBytes int64, allowed map[string]string) (string, string, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", "", ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	mime := http.DetectContentType(head[:n])
	ext, ok := allowed[mime]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime)
	}
	return mime, ext, nil
}
