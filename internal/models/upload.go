package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AcceptedMimeTypes are the only upload types the review flow takes
var AcceptedMimeTypes = []string{MimePDF, MimeDOCX}

// Upload describes a contract handed to review. File bytes are never read.
type Upload struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// Accepted reports whether the MIME type is supported
func (u Upload) Accepted() bool {
	for _, m := range AcceptedMimeTypes {
		if u.MimeType == m {
			return true
		}
	}
	return false
}

// SizeKB formats the size the way the upload panel displays it
func (u Upload) SizeKB() string {
	return fmt.Sprintf("%.2f KB", float64(u.SizeBytes)/1024)
}

// MimeTypeForPath maps a filename extension onto an accepted MIME type
func MimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	default:
		return ""
	}
}
