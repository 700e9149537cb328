package service

import (
	"strings"

	"carebook/internal/models"

	"github.com/shopspring/decimal"
)

// TotalCost prices a booking: the hourly rate for hour-based bookings, the daily rate otherwise,
// multiplied by value. A non-positive value costs nothing.
func TotalCost(rates models.RateCard, kind models.DurationKind, value decimal.Decimal) decimal.Decimal {
	if !value.IsPositive() {
		return decimal.Zero
	}

	rate := rates.Daily
	if kind == models.DurationHours {
		rate = rates.Hourly
	}
	return rate.Mul(value)
}

// ParseDurationValue reads a form value; anything non-numeric is zero.
func ParseDurationValue(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// Quote is a cost preview for a service.
type Quote struct {
	ServiceID     string              `json:"serviceId"`
	DurationType  models.DurationKind `json:"durationType"`
	DurationValue decimal.Decimal     `json:"durationValue"`
	Rate          decimal.Decimal     `json:"rate"`
	TotalCost     decimal.Decimal     `json:"totalCost"`
}

func NewQuote(service *models.Service, kind models.DurationKind, value decimal.Decimal) Quote {
	rates := service.Rates()
	rate := rates.Daily
	if kind == models.DurationHours {
		rate = rates.Hourly
	}
	return Quote{
		ServiceID:     service.ID,
		DurationType:  kind,
		DurationValue: value,
		Rate:          rate,
		TotalCost:     TotalCost(rates, kind, value),
	}
}
