package models

import (
	"gorm.io/datatypes"
)

// Personnel is an employee on the shop floor or in an office.
type Personnel struct {
	Base
	FirstName  string `gorm:"not null" json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `gorm:"index" json:"department"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	StartDate  string `json:"startDate"`
	Active     bool   `json:"active"`
}

// TableName specifies the table name for the Personnel model
func (Personnel) TableName() string {
	return "personnel"
}

// Machine is a production machine that shifts and plans are scheduled on.
type Machine struct {
	Base
	Name            string                      `gorm:"not null" json:"name"`
	Code            string                      `gorm:"index" json:"code"`
	MachineType     string                      `json:"machineType"`
	Status          string                      `gorm:"default:'active'" json:"status"`
	CapacityPerHour int                         `json:"capacityPerHour"`
	Features        datatypes.JSONSlice[string] `json:"features"`
	Notes           string                      `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the Machine model
func (Machine) TableName() string {
	return "machines"
}

// Shift assigns a person to a machine for part of a day.
type Shift struct {
	Base
	PersonnelID string `gorm:"index" json:"personnelId"`
	MachineID   string `gorm:"index" json:"machineId"`
	Date        string `gorm:"index" json:"date"`
	ShiftType   string `json:"shiftType"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Notes       string `json:"notes"`
}

// TableName specifies the table name for the Shift model
func (Shift) TableName() string {
	return "shifts"
}
