package models

import "time"

// Bus is an onboarded vehicle. RegNumber is unique and case-insensitive.
type Bus struct {
	ID              int64     `json:"id"`
	RegNumber       string    `json:"regNumber"`
	OperatorName    string    `json:"operatorName"`
	MakeModel       string    `json:"makeModel"`
	SeatingCapacity int       `json:"seatingCapacity"`
	SeatLayout      string    `json:"seatLayout"`
	DriverName      string    `json:"driverName"`
	DriverContact   string    `json:"driverContact"`
	PasswordHash    string    `json:"-"`
	QRToken         string    `json:"qrToken"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BusSummary is the slice of bus data shown on tickets.
type BusSummary struct {
	ID            int64  `json:"id"`
	RegNumber     string `json:"number"`
	DriverName    string `json:"driverName"`
	DriverContact string `json:"driverPhone"`
	Capacity      int    `json:"seatingCapacity"`
}

func (b Bus) Summary() BusSummary {
	return BusSummary{
		ID:            b.ID,
		RegNumber:     b.RegNumber,
		DriverName:    b.DriverName,
		DriverContact: b.DriverContact,
		Capacity:      b.SeatingCapacity,
	}
}
