package service

import (
	"context"
	"testing"

	"carebook/internal/models"
	"carebook/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_Create(t *testing.T) {
	ctx := context.Background()
	actor := models.Identity{Email: "owner@example.com"}

	t.Run("DefaultsImageAndTrimsFeatures", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())
		store.On("CreateService", ctx, mock.MatchedBy(func(s *models.Service) bool {
			return s.Image == models.DefaultServiceImage &&
				s.CreatedBy == "owner@example.com" &&
				len(s.Features) == 2
		})).Return(&models.Service{ID: "svc-9", Title: "Baby sitting"}, nil).Once()

		created, err := svc.Create(ctx, actor, ServiceDraft{
			Title:         " Baby sitting ",
			ChargePerHour: dec("100"),
			ChargePerDay:  dec("900"),
			Features:      []string{"Night shift", " ", "Meals"},
		})
		require.NoError(t, err)
		assert.Equal(t, "svc-9", created.ID)
		store.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())

		_, err := svc.Create(ctx, actor, ServiceDraft{ChargePerHour: dec("1"), ChargePerDay: dec("1"), Features: []string{"x"}})
		assert.ErrorIs(t, err, ErrInvalidService)

		_, err = svc.Create(ctx, actor, ServiceDraft{Title: "t", ChargePerHour: dec("0"), ChargePerDay: dec("1"), Features: []string{"x"}})
		assert.ErrorIs(t, err, ErrInvalidService)

		_, err = svc.Create(ctx, actor, ServiceDraft{Title: "t", ChargePerHour: dec("1"), ChargePerDay: dec("1")})
		assert.ErrorIs(t, err, ErrFeaturesRequired)

		_, err = svc.Create(ctx, models.Identity{}, ServiceDraft{})
		assert.ErrorIs(t, err, ErrUnauthenticated)

		store.AssertNotCalled(t, "CreateService", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_Ownership(t *testing.T) {
	ctx := context.Background()
	update := models.ServiceUpdate{Title: "Elderly care", ChargePerHour: dec("160"), ChargePerDay: dec("1300")}

	t.Run("OwnerUpdates", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())
		store.On("GetService", ctx, "svc-1").Return(careService(), nil).Once()
		store.On("UpdateService", ctx, "svc-1", update).Return(nil).Once()

		require.NoError(t, svc.Update(ctx, models.Identity{Email: "owner@example.com"}, "svc-1", update))
		store.AssertExpectations(t)
	})

	t.Run("StrangerCannotDelete", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())
		store.On("GetService", ctx, "svc-1").Return(careService(), nil).Once()

		err := svc.Delete(ctx, models.Identity{Email: "other@example.com"}, "svc-1")
		assert.ErrorIs(t, err, ErrNotServiceOwner)
		store.AssertNotCalled(t, "DeleteService", mock.Anything, mock.Anything)
	})

	t.Run("MissingService", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())
		store.On("GetService", ctx, "gone").Return(nil, remote.ErrNotFound).Once()

		err := svc.Delete(ctx, models.Identity{Email: "owner@example.com"}, "gone")
		assert.ErrorIs(t, err, remote.ErrNotFound)
	})

	t.Run("ListByCreator", func(t *testing.T) {
		store := new(mockServiceStore)
		svc := NewCatalogService(store, testLogger())
		store.On("ListServices", ctx, "owner@example.com").Return([]*models.Service{careService()}, nil).Once()

		services, err := svc.ListByCreator(ctx, models.Identity{Email: "owner@example.com"})
		require.NoError(t, err)
		assert.Len(t, services, 1)
	})
}
