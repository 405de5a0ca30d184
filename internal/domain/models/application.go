// internal/domain/models/application.go
package models

import "time"

// ApplicationType distinguishes the onboarding workflow from the visa workflow.
type ApplicationType string

const (
	ApplicationOnboarding ApplicationType = "Onboarding"
	ApplicationOPT        ApplicationType = "OPT"
)

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	StatusOpen     ApplicationStatus = "Open"
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// Application is one onboarding or visa workflow instance for an employee.
//
// Comment is HR-facing free text and is shown to the employee verbatim.
// VisaStep is the machine-readable pointer of the visa workflow and is
// never mixed into Comment.
type Application struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employeeId"`
	Type       ApplicationType   `json:"type"`
	Status     ApplicationStatus `json:"status"`
	Comment    string            `json:"comment,omitempty"`
	VisaStep   string            `json:"visaStep,omitempty"`
	CreatedAt  time.Time         `json:"createDate"`
	ModifiedAt time.Time         `json:"lastModificationDate"`
}

// ApplicationUpdate carries the mutable fields of an application. Nil
// fields are left unchanged by the backend.
type ApplicationUpdate struct {
	Comment  *string `json:"comment,omitempty"`
	VisaStep *string `json:"visaStep,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// ReviewRequest is the body of the approve and reject endpoints.
type ReviewRequest struct {
	Comment string `json:"comment"`
}

// ReviewResult is what the approve and reject endpoints return.
type ReviewResult struct {
	Status  ApplicationStatus `json:"status"`
	Comment string            `json:"comment"`
}
