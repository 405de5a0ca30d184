// internal/domain/models/registration.go
package models

// Registration is the sign-up request sent with an HR-issued token.
type Registration struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingForm is the payload an employee submits to start or resubmit
// onboarding.
type OnboardingForm struct {
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	MiddleName        string    `json:"middleName,omitempty"`
	PreferredName     string    `json:"preferredName,omitempty"`
	Email             string    `json:"email"`
	CellPhone         string    `json:"cellPhone"`
	WorkPhone         string    `json:"workPhone,omitempty"`
	Address           string    `json:"address"`
	SSN               string    `json:"ssn"`
	DOB               string    `json:"dob"`
	Gender            string    `json:"gender,omitempty"`
	WorkAuthorization string    `json:"workAuthorization"`
	VisaTitle         string    `json:"visaTitle,omitempty"`
	VisaStart         string    `json:"visaStartDate,omitempty"`
	VisaEnd           string    `json:"visaEndDate,omitempty"`
	Reference         *Contact  `json:"reference,omitempty"`
	EmergencyContacts []Contact `json:"emergencyContacts,omitempty"`
}
