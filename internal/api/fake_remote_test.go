package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"carebook/internal/models"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// fakeRemote is an in-memory stand-in for the remote REST API.
type fakeRemote struct {
	mu          sync.Mutex
	services    map[string]*models.Service
	bookings    []*models.Booking
	users       []*models.User
	admins      map[string]bool
	nextID      int
	statusCalls int
	roleCalls   int
	listQueries []string
	rejectAuth  bool
	lastToken   string
}

func newFakeRemote(t *testing.T) (*fakeRemote, *httptest.Server) {
	t.Helper()
	f := &fakeRemote{
		services: map[string]*models.Service{
			"svc-1": {
				ID:            "svc-1",
				Title:         "Elderly care",
				ChargePerHour: decimal.NewFromInt(150),
				ChargePerDay:  decimal.NewFromInt(1200),
				CreatedBy:     "owner@example.com",
			},
		},
		admins: map[string]bool{"admin@example.com": true},
		users: []*models.User{
			{Email: "admin@example.com", Role: models.RoleAdmin},
			{Email: "user@example.com", Role: models.RoleUser},
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/services", f.listServices).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", f.getService).Methods(http.MethodGet)
	r.HandleFunc("/bookings", f.listBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings", f.createBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}", f.patchBooking).Methods(http.MethodPatch)
	r.HandleFunc("/admin/check/{email}", f.checkAdmin).Methods(http.MethodGet)
	r.HandleFunc("/admin/bookings", f.allBookings).Methods(http.MethodGet)
	r.HandleFunc("/admin/users", f.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{email}/role", f.setRole).Methods(http.MethodPatch)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.lastToken = strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
		reject := f.rejectAuth && !strings.HasPrefix(req.URL.Path, "/admin/check/")
		f.mu.Unlock()
		if reject {
			http.Error(w, `{"message":"forbidden access"}`, http.StatusUnauthorized)
			return
		}
		r.ServeHTTP(w, req)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRemote) addBooking(b *models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, b)
}

func (f *fakeRemote) booking(id string) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			return *b
		}
	}
	return models.Booking{}
}

func (f *fakeRemote) setRejectAuth(reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAuth = reject
}

// calls returns the number of status and role updates received.
func (f *fakeRemote) calls() (status, role int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.roleCalls
}

func (f *fakeRemote) adminListQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listQueries...)
}

func (f *fakeRemote) bookingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

func (f *fakeRemote) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastToken
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeRemote) listServices(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Service, 0, len(f.services))
	for _, s := range f.services {
		out = append(out, s)
	}
	respond(w, out)
}

func (f *fakeRemote) getService(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[mux.Vars(r)["id"]]
	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	respond(w, s)
}

func (f *fakeRemote) listBookings(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := r.URL.Query().Get("email")
	out := []*models.Booking{}
	for _, b := range f.bookings {
		if b.UserEmail == email {
			out = append(out, b)
		}
	}
	respond(w, out)
}

func (f *fakeRemote) createBooking(w http.ResponseWriter, r *http.Request) {
	var b models.Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = fmt.Sprintf("b-%d", f.nextID)
	f.bookings = append(f.bookings, &b)
	respond(w, map[string]any{"acknowledged": true, "insertedId": b.ID})
}

func (f *fakeRemote) patchBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	for _, b := range f.bookings {
		if b.ID == mux.Vars(r)["id"] {
			b.Status = body.Status
		}
	}
	respond(w, map[string]int{"modifiedCount": 1})
}

func (f *fakeRemote) checkAdmin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	respond(w, map[string]bool{"isAdmin": f.admins[mux.Vars(r)["email"]]})
}

func (f *fakeRemote) allBookings(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := models.BookingStatus(r.URL.Query().Get("status"))
	f.listQueries = append(f.listQueries, string(status))
	out := []*models.Booking{}
	for _, b := range f.bookings {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	respond(w, out)
}

func (f *fakeRemote) listUsers(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	respond(w, f.users)
}

func (f *fakeRemote) setRole(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCalls++
	respond(w, map[string]int{"modifiedCount": 1})
}
