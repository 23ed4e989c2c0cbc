package children

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewInMemoryStore())
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	birth := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates an available child", func(t *testing.T) {
		child, err := svc.Create(ctx, "Ana", "Pérez", birth, "female", "Loves drawing.", "ana.jpg")
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, child.Status)
		assert.False(t, child.ID.IsNil())

		got, err := svc.Get(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.FirstName)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.Create(ctx, " ", "Pérez", birth, "female", "", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects future birth date", func(t *testing.T) {
		_, err := svc.Create(ctx, "Ana", "Pérez", time.Now().Add(24*time.Hour), "female", "", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestServiceDeactivate(t *testing.T) {
	ctx := context.Background()
	birth := time.Date(2014, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("parks an available child", func(t *testing.T) {
		svc := newTestService()
		child, err := svc.Create(ctx, "Luis", "Gómez", birth, "male", "", "")
		require.NoError(t, err)

		require.NoError(t, svc.Deactivate(ctx, child.ID))
		got, err := svc.Get(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusInactive, got.Status)

		// Idempotent on an already inactive child.
		require.NoError(t, svc.Deactivate(ctx, child.ID))
	})

	t.Run("refuses while sponsored", func(t *testing.T) {
		store := NewInMemoryStore()
		svc := NewService(store)
		child, err := svc.Create(ctx, "Luis", "Gómez", birth, "male", "", "")
		require.NoError(t, err)
		require.NoError(t, store.SetStatus(ctx, child.ID, StatusSponsored))

		err = svc.Deactivate(ctx, child.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("reactivate returns child to pool", func(t *testing.T) {
		svc := newTestService()
		child, err := svc.Create(ctx, "Luis", "Gómez", birth, "male", "", "")
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(ctx, child.ID))

		require.NoError(t, svc.Reactivate(ctx, child.ID))
		got, err := svc.Get(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, got.Status)

		err = svc.Reactivate(ctx, child.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("unknown child is not found", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Get(ctx, id.NewChildID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
