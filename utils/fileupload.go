package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFolder receives uploads sent without a folder.
const DefaultFolder = "general"

// AllowedExtensions lists the file types accepted for upload.
var AllowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".pdf":  true,
	".ai":   true,
	".eps":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".csv":  true,
	".txt":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// SanitizeFolder lower-cases name and keeps only [a-z0-9_-].
func SanitizeFolder(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultFolder
	}
	return b.String()
}

// SanitizeFilename reduces name to a safe base name with a lower-case extension.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	lastDash := false
	for _, r := range stem {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteRune('-')
			lastDash = true
		}
	}
	clean := strings.Trim(b.String(), "-")
	if clean == "" {
		clean = "file"
	}
	return clean + ext
}

// ValidateUpload validates the uploaded file format and size
func ValidateUpload(fileHeader *multipart.FileHeader, maxBytes int64) error {
	if fileHeader.Size > maxBytes {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", maxBytes/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !AllowedExtensions[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("File type %q is not allowed", ext),
		}
	}

	return nil
}

// SaveUploadedFile stores the upload under uploadDir/folder and returns the stored file name.
// An existing file is never overwritten; a -1, -2, ... suffix is added instead.
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, folder string) (filename string, err error) {
	dir := filepath.Join(uploadDir, SanitizeFolder(folder))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := SanitizeFilename(fileHeader.Filename)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	var dst *os.File
	for n := 0; ; n++ {
		filename = name
		if n > 0 {
			filename = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		dst, err = os.OpenFile(filepath.Join(dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create destination file: %w", err)
		}
	}
	path := filepath.Join(dir, filename)

	if _, err := copyUpload(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	return filename, nil
}

var copyUpload = io.Copy

// ResolveUploadPath maps a folder and file name from a URL onto the upload directory.
// Names that could leave the directory are rejected.
func ResolveUploadPath(uploadDir, folder, filename string) (string, error) {
	for _, part := range []string{folder, filename} {
		if part == "" || part == "." || strings.Contains(part, "..") || strings.ContainsAny(part, "/\\") {
			return "", &FileUploadError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
		}
	}
	return filepath.Join(uploadDir, folder, filename), nil
}

// GetUploadURL returns the URL path for accessing an uploaded file
func GetUploadURL(folder, filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/uploads/%s/%s", folder, filename)
}
