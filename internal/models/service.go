package models

import (
	"github.com/shopspring/decimal"
)

// Service is a bookable care offering.
type Service struct {
	ID            string          `json:"_id,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	ChargePerHour decimal.Decimal `json:"chargePerHour"`
	ChargePerDay  decimal.Decimal `json:"chargePerDay"`
	Image         string          `json:"image"`
	Features      []string        `json:"features,omitempty"`
	CreatedBy     string          `json:"createdBy"`
}

// RateCard is the hourly/daily price pair of a service.
type RateCard struct {
	Hourly decimal.Decimal
	Daily  decimal.Decimal
}

// Rates returns the service's rate card.
func (s *Service) Rates() RateCard {
	return RateCard{Hourly: s.ChargePerHour, Daily: s.ChargePerDay}
}

// IsCreatedBy reports whether email created the service.
func (s *Service) IsCreatedBy(email string) bool {
	return email != "" && NormalizeEmail(s.CreatedBy) == NormalizeEmail(email)
}

// ServiceUpdate holds the editable fields of a service.
type ServiceUpdate struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ChargePerHour decimal.Decimal `json:"chargePerHour"`
	ChargePerDay  decimal.Decimal `json:"chargePerDay"`
}
