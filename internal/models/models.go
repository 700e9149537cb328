package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote API exchanges money and durations as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Session is the server-side record of a signed-in user.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	IDToken   string    `json:"id_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// StatusCount is one row of the admin status breakdown.
type StatusCount struct {
	Status BookingStatus `json:"_id"`
	Count  int64         `json:"count"`
}

// AdminStats are the aggregate counters of the admin dashboard.
type AdminStats struct {
	TotalBookings int64           `json:"totalBookings"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalUsers    int64           `json:"totalUsers"`
	TotalServices int64           `json:"totalServices"`
	StatusCounts  []StatusCount   `json:"statusCounts"`
}

// Breakdown returns a count for every known status, zero when the API omitted it.
func (s *AdminStats) Breakdown() map[BookingStatus]int64 {
	out := make(map[BookingStatus]int64, len(AllStatuses))
	for _, st := range AllStatuses {
		out[st] = 0
	}
	for _, c := range s.StatusCounts {
		out[c.Status] += c.Count
	}
	return out
}

// Division is an administrative division of the geo reference.
type Division struct {
	Name string `json:"division"`
}

// District is a district inside a division.
type District struct {
	Name string `json:"district"`
}

// ProviderSession is what the identity provider returns on a successful sign-in.
type ProviderSession struct {
	Identity     Identity
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	NewUser      bool
}
