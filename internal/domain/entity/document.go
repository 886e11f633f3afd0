package entity

import (
	"path/filepath"
	"strings"
	"time"
)

// MaxDocumentSize is the largest accepted upload, 5 MiB
const MaxDocumentSize int64 = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xlsx": true,
	".xls":  true,
	".txt":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// SupportingDocument is uploaded evidence attached to exactly one claim
type SupportingDocument struct {
	ID         int64     `json:"id"`
	ClaimID    int64     `json:"claim_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	UploadDate time.Time `json:"upload_date"`
}

// DocumentExtension returns the lower-cased extension including the dot
func DocumentExtension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// ValidateDocument checks the size limit and the extension allow-list
func ValidateDocument(fileName string, fileSize int64) error {
	verr := &ValidationError{}
	if strings.TrimSpace(fileName) == "" {
		verr.Add("file_name", "file name is required")
	} else if !allowedExtensions[DocumentExtension(fileName)] {
		verr.Add("file_name", "file type not allowed; upload PDF, Word, Excel, image or text files")
	}
	if fileSize <= 0 {
		verr.Add("file_size", "file is empty")
	} else if fileSize > MaxDocumentSize {
		verr.Add("file_size", "file is too large; maximum size is 5MB")
	}
	return verr.OrNil()
}

// DocumentContent is a stored document together with its bytes
type DocumentContent struct {
	Document SupportingDocument
	Content  []byte
}
