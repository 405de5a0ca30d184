// internal/domain/models/house.go
package models

import "time"

// House is company-provided housing.
type House struct {
	ID            string     `json:"id"`
	Address       string     `json:"address"`
	Landlord      string     `json:"landlordName"`
	LandlordPhone string     `json:"landlordPhone"`
	LandlordEmail string     `json:"landlordEmail"`
	Capacity      int        `json:"maxOccupant"`
	Residents     []Employee `json:"residents,omitempty"`
}

// FacilityReport is a maintenance issue raised by a resident.
type FacilityReport struct {
	ID          string    `json:"id"`
	HouseID     string    `json:"houseId"`
	EmployeeID  string    `json:"employeeId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createDate"`
}
