package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func staticIdentity(id *models.Identity) IdentityResolver {
	return func(context.Context) (*models.Identity, error) { return id, nil }
}

func TestAccessState_Decision(t *testing.T) {
	id := &models.Identity{Email: "a@example.com"}

	assert.Equal(t, DecisionVerifying, PendingState().Decision())
	assert.Equal(t, DecisionRedirectLogin, ReadyState(nil, true).Decision())
	assert.Equal(t, DecisionAccessDenied, ReadyState(id, false).Decision())
	assert.Equal(t, DecisionPermitted, ReadyState(id, true).Decision())
	assert.False(t, ReadyState(nil, true).IsAdmin())
}

func TestAccessGate(t *testing.T) {
	ctx := context.Background()
	id := &models.Identity{Email: "admin@example.com"}

	t.Run("Permitted", func(t *testing.T) {
		roles := new(mockAdminStore)
		roles.On("CheckAdmin", mock.Anything, "admin@example.com").Return(true, nil).Once()
		gate := NewAccessGate(roles, testLogger())

		state, err := gate.Begin(ctx, staticIdentity(id)).Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, DecisionPermitted, state.Decision())
		assert.Equal(t, id, state.Identity())
	})

	t.Run("SignedOut", func(t *testing.T) {
		roles := new(mockAdminStore)
		gate := NewAccessGate(roles, testLogger())

		state, err := gate.Begin(ctx, staticIdentity(nil)).Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirectLogin, state.Decision())
		roles.AssertNotCalled(t, "CheckAdmin", mock.Anything, mock.Anything)
	})

	t.Run("ResolverErrorIsSignedOut", func(t *testing.T) {
		gate := NewAccessGate(new(mockAdminStore), testLogger())
		resolve := func(context.Context) (*models.Identity, error) { return nil, errors.New("expired") }

		state, err := gate.Begin(ctx, resolve).Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, DecisionRedirectLogin, state.Decision())
	})

	t.Run("LookupFailureFailsClosed", func(t *testing.T) {
		roles := new(mockAdminStore)
		roles.On("CheckAdmin", mock.Anything, "admin@example.com").Return(false, errors.New("unreachable")).Once()
		gate := NewAccessGate(roles, testLogger())

		state, err := gate.Begin(ctx, staticIdentity(id)).Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, DecisionAccessDenied, state.Decision())
	})

	t.Run("VerifyingWhileRoleLookupBlocks", func(t *testing.T) {
		release := make(chan struct{})
		roles := new(mockAdminStore)
		roles.On("CheckAdmin", mock.Anything, "admin@example.com").
			Run(func(mock.Arguments) { <-release }).
			Return(true, nil).Once()
		gate := NewAccessGate(roles, testLogger())

		check := gate.Begin(ctx, staticIdentity(id))
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, DecisionVerifying, check.State().Decision())

		close(release)
		state, err := check.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, DecisionPermitted, state.Decision())
	})

	t.Run("VerifyingWhileIdentityBlocks", func(t *testing.T) {
		gate := NewAccessGate(new(mockAdminStore), testLogger())
		resolve := func(ctx context.Context) (*models.Identity, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		check := gate.Begin(ctx, resolve)
		assert.Equal(t, DecisionVerifying, check.State().Decision())

		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := check.Wait(waitCtx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		check.Cancel()
		_, err = check.Wait(ctx)
		assert.ErrorIs(t, err, ErrCheckCancelled)
		assert.Equal(t, DecisionVerifying, check.State().Decision())
	})

	t.Run("CancelDropsLateResult", func(t *testing.T) {
		release := make(chan struct{})
		roles := new(mockAdminStore)
		roles.On("CheckAdmin", mock.Anything, "admin@example.com").
			Run(func(mock.Arguments) { <-release }).
			Return(true, nil).Once()
		gate := NewAccessGate(roles, testLogger())

		check := gate.Begin(ctx, staticIdentity(id))
		time.Sleep(10 * time.Millisecond)
		check.Cancel()
		close(release)

		_, err := check.Wait(ctx)
		assert.ErrorIs(t, err, ErrCheckCancelled)
		assert.False(t, check.State().Ready())
	})
}
