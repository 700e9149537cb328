package models

// BookingStatus is the lifecycle state of a booking as the remote API stores it.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

// AllStatuses lists every booking status in display order.
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// IsTerminal reports whether no further transition may leave this status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DurationKind is the billing unit of a booking.
type DurationKind string

const (
	DurationHours DurationKind = "hours"
	DurationDays  DurationKind = "days"
)

// Valid reports whether k is hours or days.
func (k DurationKind) Valid() bool {
	return k == DurationHours || k == DurationDays
}

// Role is an application role of a user record.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is user or admin.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

const (
	// MaxDurationHours верхняя граница часов в форме бронирования
	MaxDurationHours = 24

	// MaxDurationDays верхняя граница дней в форме бронирования
	MaxDurationDays = 365

	// DefaultServiceImage подставляется, если при создании услуги не указано изображение
	DefaultServiceImage = "https://i.ibb.co/placeholder.jpg"

	// DefaultSessionTTL время жизни сессии в секундах
	DefaultSessionTTL = 7 * 24 * 60 * 60

	// DefaultLoginAttempts количество попыток входа в окне
	DefaultLoginAttempts = 5

	// DefaultLoginWindow окно ограничения попыток входа в секундах
	DefaultLoginWindow = 15 * 60

	// DefaultGeoCacheTTL время жизни кэша справочника регионов в секундах
	DefaultGeoCacheTTL = 24 * 60 * 60

	// DefaultRemoteTimeout таймаут запросов к удалённому API в секундах
	DefaultRemoteTimeout = 10
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)
