package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID            string          `json:"_id,omitempty"`
	ServiceID     string          `json:"serviceId"`
	ServiceName   string          `json:"serviceName"`
	UserEmail     string          `json:"userEmail"`
	UserName      string          `json:"userName"`
	DurationType  DurationKind    `json:"durationType"`
	DurationValue decimal.Decimal `json:"durationValue"`
	Division      string          `json:"division"`
	District      string          `json:"district"`
	City          string          `json:"city"`
	Area          string          `json:"area"`
	Address       string          `json:"address"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Status        BookingStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt,omitzero"`
}

// Location is the address payload of a booking.
type Location struct {
	Division string `json:"division"`
	District string `json:"district"`
	City     string `json:"city"`
	Area     string `json:"area"`
	Address  string `json:"address"`
}

// Location returns the booking's address payload.
func (b *Booking) Location() Location {
	return Location{
		Division: b.Division,
		District: b.District,
		City:     b.City,
		Area:     b.Area,
		Address:  b.Address,
	}
}

// IsOwnedBy reports whether email requested the booking.
func (b *Booking) IsOwnedBy(email string) bool {
	return email != "" && NormalizeEmail(b.UserEmail) == NormalizeEmail(email)
}
