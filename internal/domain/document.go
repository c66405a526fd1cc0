package domain

import (
	"net/http"
	"time"
)

// OtherLabel is the catalog entry for user-named documents.
const OtherLabel = "Other"

// UncategorizedID is the placeholder category id. It is a real value, not "unset".
const UncategorizedID int64 = 0

type Category struct {
	ID         int64
	CaseTypeID string
	Label      string
	CreatedAt  time.Time
}

type Document struct {
	ID          string
	TaskID      string
	CategoryID  int64
	Label       string
	FileName    string
	ContentType string
	SizeBytes   int64
	Visible     bool
	UploadedBy  string
	CreatedAt   time.Time
}

// PendingFile is a locally selected file awaiting upload.
type PendingFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// NewPendingFile wraps data, sniffing the content type when none is given.
func NewPendingFile(name, contentType string, data []byte) *PendingFile {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &PendingFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
}

// UploadRequest is one document upload sent to the system of record.
type UploadRequest struct {
	TaskID     string
	CategoryID int64
	Label      string
	File       *PendingFile
	Visible    bool
	UploadedBy string
}
