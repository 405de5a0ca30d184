// internal/domain/models/employee.go
package models

import (
	"strings"
	"time"
)

// Employee is the HR record attached to a user account once onboarding starts.
type Employee struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	MiddleName        string     `json:"middleName,omitempty"`
	PreferredName     string     `json:"preferredName,omitempty"`
	Email             string     `json:"email"`
	CellPhone         string     `json:"cellPhone,omitempty"`
	WorkPhone         string     `json:"workPhone,omitempty"`
	SSN               string     `json:"ssn,omitempty"`
	DOB               *time.Time `json:"dob,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	Address           string     `json:"address,omitempty"`
	HouseID           string     `json:"houseId,omitempty"`
	WorkAuthorization string     `json:"workAuthorization,omitempty"`
	VisaTitle         string     `json:"visaTitle,omitempty"`
	VisaStart         *time.Time `json:"visaStartDate,omitempty"`
	VisaEnd           *time.Time `json:"visaEndDate,omitempty"`
	DriverLicense     string     `json:"driverLicense,omitempty"`
}

// DisplayName returns "Preferred Last" when a preferred name is set,
// otherwise "First Last".
func (e Employee) DisplayName() string {
	first := e.FirstName
	if strings.TrimSpace(e.PreferredName) != "" {
		first = e.PreferredName
	}
	return strings.TrimSpace(first + " " + e.LastName)
}

// NeedsVisaSteps reports whether the employee is on an OPT work
// authorization that requires staged document review.
func (e Employee) NeedsVisaSteps() bool {
	t := strings.ToUpper(strings.TrimSpace(e.VisaTitle))
	return strings.HasPrefix(t, "F1") || strings.HasPrefix(t, "F-1") || strings.Contains(t, "OPT")
}

// Contact is an emergency contact or reference on an onboarding form.
type Contact struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}
