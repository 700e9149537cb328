package service

import (
	"context"
	"io"
	"time"

	"carebook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) ListBookings(ctx context.Context, email string) ([]*models.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type mockServiceStore struct {
	mock.Mock
}

func (m *mockServiceStore) ListServices(ctx context.Context, createdBy string) ([]*models.Service, error) {
	args := m.Called(ctx, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *mockServiceStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockServiceStore) CreateService(ctx context.Context, s *models.Service) (*models.Service, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockServiceStore) UpdateService(ctx context.Context, id string, u models.ServiceUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

func (m *mockServiceStore) DeleteService(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAdminStore struct {
	mock.Mock
}

func (m *mockAdminStore) CheckAdmin(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminStore) GetStats(ctx context.Context, actor string) (*models.AdminStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminStats), args.Error(1)
}

func (m *mockAdminStore) ListAllBookings(ctx context.Context, actor string, status models.BookingStatus) ([]*models.Booking, error) {
	args := m.Called(ctx, actor, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockAdminStore) ListUsers(ctx context.Context, actor string) ([]*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockAdminStore) SetUserRole(ctx context.Context, actor, target string, role models.Role) error {
	return m.Called(ctx, actor, target, role).Error(0)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) UpsertUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionRepo) SaveSession(ctx context.Context, s *models.Session, ttl time.Duration) error {
	return m.Called(ctx, s, ttl).Error(0)
}

func (m *mockSessionRepo) DeleteSession(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepo) SaveLoginState(ctx context.Context, state string, ttl time.Duration) error {
	return m.Called(ctx, state, ttl).Error(0)
}

func (m *mockSessionRepo) ConsumeLoginState(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignUp(ctx context.Context, email, password, name string) (*models.ProviderSession, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderSession), args.Error(1)
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*models.ProviderSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderSession), args.Error(1)
}

func (m *mockProvider) SignInWithIdp(ctx context.Context, providerID, token, requestURI string) (*models.ProviderSession, error) {
	args := m.Called(ctx, providerID, token, requestURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderSession), args.Error(1)
}

type mockFederated struct {
	mock.Mock
}

func (m *mockFederated) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockFederated) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}
