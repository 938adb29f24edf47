package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxSize          int64 // inclusive
}

// NoteConstraints accepts PDFs and JPEG/PNG images up to 10 MiB.
var NoteConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
	},
	MaxSize: 10 << 20,
}

// WithMaxSize returns a copy of c with a different size limit.
func (c FileConstraints) WithMaxSize(n int64) FileConstraints {
	c.MaxSize = n
	return c
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string // as declared by the client
	Size        int64
	Content     io.ReadSeeker
}

// ValidateUpload checks the declared type, size and sniffed content of u
// and returns the sniffed media type. The declared and sniffed types must
// agree on PDF versus image. The content is rewound before returning.
func ValidateUpload(u Upload, c FileConstraints) (string, error) {
	if u.Content == nil {
		return "", fieldError("file", "file is required")
	}

	declared := normalizeMime(u.ContentType)
	if !c.AllowedMimeTypes[declared] {
		return "", fieldError("file", "Please upload a PDF or image file (JPEG, PNG)")
	}

	if u.Size > c.MaxSize {
		return "", fieldError("file", fmt.Sprintf("File size must be less than %d MB", c.MaxSize/(1<<20)))
	}
	if u.Size <= 0 {
		return "", fieldError("file", "file is empty")
	}

	// Read first 512 bytes for magic number detection
	buffer := make([]byte, 512)
	n, err := io.ReadFull(u.Content, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	_, err = u.Content.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	// The sniffed type cannot be faked by changing the Content-Type header.
	detected := normalizeMime(http.DetectContentType(buffer[:n]))
	if !c.AllowedMimeTypes[detected] {
		return "", fieldError("file", fmt.Sprintf("invalid file content (detected: %s)", detected))
	}
	if isPDF(declared) != isPDF(detected) {
		return "", fieldError("file", fmt.Sprintf("file content (%s) does not match its declared type (%s)", detected, declared))
	}

	return detected, nil
}

func isPDF(mediaType string) bool {
	return mediaType == "application/pdf"
}

// normalizeMime strips parameters and lower-cases the media type.
func normalizeMime(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
