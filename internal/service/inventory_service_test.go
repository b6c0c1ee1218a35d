package service_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryService_Purchase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 10)

	receipt, err := e.inventory.Purchase(ctx, testUser, bar.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, receipt.Sweet.Quantity)
	assert.Equal(t, "Successfully purchased 2 Chocolate Bar(s)", receipt.Message)
	assert.True(t, receipt.Sweet.UpdatedAt.After(bar.UpdatedAt) || receipt.Sweet.UpdatedAt.Equal(bar.UpdatedAt))
	assert.Equal(t, 8, e.quantity(t, bar.ID))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]events.Action{events.ActionPurchased}, e.events.actions())
	}, time.Second, 10*time.Millisecond)
}

func TestInventoryService_Purchase_InsufficientStockLeavesQuantity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 8)

	_, err := e.inventory.Purchase(ctx, testUser, bar.ID, 20)
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)

	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 8, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Contains(t, err.Error(), "Available: 8")
	assert.Equal(t, 8, e.quantity(t, bar.ID))
}

func TestInventoryService_Purchase_ExactStockDrainsToZero(t *testing.T) {
	e := newEnv(t)
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 3)

	receipt, err := e.inventory.Purchase(context.Background(), testUser, bar.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.Sweet.Quantity)

	_, err = e.inventory.Purchase(context.Background(), testUser, bar.ID, 1)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
}

func TestInventoryService_Purchase_Validation(t *testing.T) {
	e := newEnv(t)
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 10)

	for _, q := range []int{0, -1} {
		_, err := e.inventory.Purchase(context.Background(), testUser, bar.ID, q)
		assert.ErrorIs(t, err, apperror.ErrValidation, "quantity %d", q)
	}
	assert.Equal(t, 10, e.quantity(t, bar.ID))
}

func TestInventoryService_NotFoundBeforeValidation(t *testing.T) {
	e := newEnv(t)
	missing := uuid.New()

	_, err := e.inventory.Purchase(context.Background(), testUser, missing, 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = e.inventory.Restock(context.Background(), testAdmin, missing, 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Sweet not found", err.Error())
}

func TestInventoryService_Restock(t *testing.T) {
	e := newEnv(t)
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 10)

	receipt, err := e.inventory.Restock(context.Background(), testAdmin, bar.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 60, receipt.Sweet.Quantity)
	assert.Equal(t, "Successfully restocked 50 Chocolate Bar(s)", receipt.Message)

	_, err = e.inventory.Restock(context.Background(), testAdmin, bar.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 60, e.quantity(t, bar.ID))
}

func TestInventoryService_QuantityCap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bar := e.seed(t, "Chocolate Bar", model.CategoryChocolate, "2.50", 10)

	_, err := e.inventory.Restock(ctx, testAdmin, bar.ID, math.MaxInt)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = e.inventory.Purchase(ctx, testUser, bar.ID, math.MaxInt)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	// In range on its own, but the total would pass the cap
	_, err = e.inventory.Restock(ctx, testAdmin, bar.ID, model.MaxQuantity-9)
	require.ErrorIs(t, err, apperror.ErrValidation)
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")
	assert.Equal(t, 10, e.quantity(t, bar.ID))

	receipt, err := e.inventory.Restock(ctx, testAdmin, bar.ID, model.MaxQuantity-10)
	require.NoError(t, err)
	assert.Equal(t, model.MaxQuantity, receipt.Sweet.Quantity)

	_, err = e.inventory.Restock(ctx, testAdmin, uuid.New(), math.MaxInt)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInventoryService_ConcurrentPurchasesNeverOversell(t *testing.T) {
	e := newEnv(t)
	bar := e.seed(t, "Gummy Bears", model.CategoryCandy, "1.50", 10)

	const buyers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.inventory.Purchase(context.Background(), testUser, bar.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, apperror.ErrInsufficientStock):
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, buyers-10, refused)
	assert.Equal(t, 0, e.quantity(t, bar.ID))
}
