package domain

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// FileKind is the type of an uploaded study file
type FileKind string

const (
	FilePDF  FileKind = "pdf"
	FilePPTX FileKind = "pptx"
	FileTXT  FileKind = "txt"
)

// MaxUploadBytes is the default upload size limit (50 MiB)
const MaxUploadBytes int64 = 50 * 1024 * 1024

var (
	ErrUnsupportedFileType = errors.New("file type not supported, upload PDF, PPTX, or TXT files")
	ErrFileTooLarge        = errors.New("file size exceeds the upload limit")
)

// MIMETypes maps supported kinds to their content types
var MIMETypes = map[FileKind]string{
	FilePDF:  "application/pdf",
	FilePPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	FileTXT:  "text/plain",
}

// UploadedFile is the metadata kept for a file dropped into a session
type UploadedFile struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Kind       FileKind  `json:"type"`
	SizeBytes  int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// HumanSize renders the file size for display
func (f UploadedFile) HumanSize() string {
	return humanize.IBytes(uint64(f.SizeBytes))
}

// DetectFileKind resolves the kind from the file extension
func DetectFileKind(name string) (FileKind, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	kind := FileKind(ext)
	if _, ok := MIMETypes[kind]; !ok {
		return "", ErrUnsupportedFileType
	}
	return kind, nil
}

// NewUploadedFile validates the name and size and returns the file metadata.
// maxBytes <= 0 means MaxUploadBytes.
func NewUploadedFile(name string, size, maxBytes int64, now time.Time) (*UploadedFile, error) {
	kind, err := DetectFileKind(name)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	if size > maxBytes {
		return nil, ErrFileTooLarge
	}

	return &UploadedFile{
		ID:         uuid.New(),
		Name:       name,
		Kind:       kind,
		SizeBytes:  size,
		UploadedAt: now,
	}, nil
}
