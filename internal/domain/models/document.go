// internal/domain/models/document.go
package models

import "time"

// DocumentStatus is the review marker stamped on an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "Pending"
	DocumentApproved DocumentStatus = "Approved"
	DocumentRejected DocumentStatus = "Rejected"
)

// Document is an uploaded file owned by an employee. For visa documents,
// Type holds the VisaStep the file was submitted for.
type Document struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employeeId"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Status      DocumentStatus `json:"status"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"contentType,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	CreatedAt   time.Time      `json:"createDate"`
}

// DocumentMetadata is sent alongside a file when a document is uploaded
// or relabelled.
type DocumentMetadata struct {
	EmployeeID string         `json:"employeeId,omitempty"`
	Type       string         `json:"type,omitempty"`
	Title      string         `json:"title,omitempty"`
	Status     DocumentStatus `json:"status,omitempty"`
	Comment    string         `json:"comment,omitempty"`
}

// FileUpload is a file body plus its name and content type.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
