package service

import (
	"sync"

	"carebook/internal/models"
)

// Actor is the identity performing an action and whether it holds the admin role.
type Actor struct {
	Identity   models.Identity
	Privileged bool
}

// BookingView is the caller's local list of bookings. It is only reconciled after the
// remote store has accepted a change.
type BookingView struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Booking
}

func NewBookingView(bookings []*models.Booking) *BookingView {
	v := &BookingView{
		order: make([]string, 0, len(bookings)),
		byID:  make(map[string]*models.Booking, len(bookings)),
	}
	for _, b := range bookings {
		if b == nil {
			continue
		}
		if _, dup := v.byID[b.ID]; !dup {
			v.order = append(v.order, b.ID)
		}
		cp := *b
		v.byID[b.ID] = &cp
	}
	return v
}

// Get returns a copy of the booking.
func (v *BookingView) Get(id string) (models.Booking, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	b, ok := v.byID[id]
	if !ok {
		return models.Booking{}, false
	}
	return *b, true
}

// Apply sets the status of a booking already in the view.
func (v *BookingView) Apply(id string, status models.BookingStatus) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.byID[id]
	if !ok {
		return false
	}
	b.Status = status
	return true
}

// Snapshot returns copies of all bookings in their original order.
func (v *BookingView) Snapshot() []models.Booking {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Booking, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, *v.byID[id])
	}
	return out
}

func (v *BookingView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.order)
}

// BookingEntry is a booking together with the transitions the viewer may trigger.
type BookingEntry struct {
	models.Booking
	Actions []models.BookingStatus `json:"actions"`
}

// Entries annotates the snapshot with the actions offered to actor.
func (v *BookingView) Entries(actor Actor) []BookingEntry {
	snapshot := v.Snapshot()
	out := make([]BookingEntry, 0, len(snapshot))
	for _, b := range snapshot {
		actions := []models.BookingStatus{}
		if actor.Privileged || b.IsOwnedBy(actor.Identity.Email) {
			actions = AllowedTransitions(b.Status, actor.Privileged)
		}
		out = append(out, BookingEntry{Booking: b, Actions: actions})
	}
	return out
}
