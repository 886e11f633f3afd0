package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		size     int64
		wantErr  bool
	}{
		{"pdf", "timesheet.pdf", 1024, false},
		{"upper case extension", "SCAN.JPG", 2048, false},
		{"docx", "report.docx", 10, false},
		{"bitmap", "image.bmp", 10, false},
		{"exactly 5 MiB", "big.xlsx", MaxDocumentSize, false},
		{"one byte over", "big.xlsx", MaxDocumentSize + 1, true},
		{"executable", "payload.exe", 10, true},
		{"no extension", "README", 10, true},
		{"double extension", "invoice.pdf.exe", 10, true},
		{"empty name", "", 10, true},
		{"empty file", "notes.txt", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.fileName, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentExtension(t *testing.T) {
	assert.Equal(t, ".pdf", DocumentExtension("A.PDF"))
	assert.Equal(t, ".jpeg", DocumentExtension("dir/photo.Jpeg"))
	assert.Equal(t, "", DocumentExtension("noext"))
}
