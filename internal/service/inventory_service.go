package service

import (
	"context"
	"fmt"
	"time"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPurchaseQuantity applies when a purchase does not name a quantity.
const DefaultPurchaseQuantity = 1

// Receipt is the outcome of a stock movement.
type Receipt struct {
	Message string
	Sweet   *model.Sweet
}

// InventoryService moves stock. Purchase and restock stay separate operations:
// only purchase enforces the stock floor, and they are gated by different policies.
type InventoryService interface {
	Purchase(ctx context.Context, caller *policy.Caller, id uuid.UUID, quantity int) (*Receipt, error)
	Restock(ctx context.Context, caller *policy.Caller, id uuid.UUID, quantity int) (*Receipt, error)
}

type inventoryService struct {
	sweetRepo repository.SweetRepository
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewInventoryService(sweetRepo repository.SweetRepository, db *gorm.DB, publisher events.Publisher) InventoryService {
	return &inventoryService{
		sweetRepo: sweetRepo,
		db:        db,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *inventoryService) Purchase(ctx context.Context, caller *policy.Caller, id uuid.UUID, quantity int) (*Receipt, error) {
	sweet, err := s.adjust(ctx, id, quantity, func(repo repository.SweetRepository, at time.Time) error {
		ok, err := repo.DecrementQuantity(ctx, id, quantity, at)
		if err != nil || ok {
			return err
		}
		// The guard refused: report what is actually on hand
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return sweetLookupError(err, id)
		}
		return &apperror.InsufficientStockError{Available: current.Quantity, Requested: quantity}
	})
	if err != nil {
		logging.FromContext(ctx).Info("purchase rejected", "sweet_id", id, "quantity", quantity, "error", err)
		return nil, err
	}

	logging.FromContext(ctx).Info("sweet purchased", "sweet_id", id, "quantity", quantity, "remaining", sweet.Quantity)
	notify(ctx, s.publisher, events.NewStockEvent(events.ActionPurchased, sweet, caller, quantity))

	return &Receipt{
		Message: fmt.Sprintf("Successfully purchased %d %s(s)", quantity, sweet.Name),
		Sweet:   sweet,
	}, nil
}

func (s *inventoryService) Restock(ctx context.Context, caller *policy.Caller, id uuid.UUID, quantity int) (*Receipt, error) {
	sweet, err := s.adjust(ctx, id, quantity, func(repo repository.SweetRepository, at time.Time) error {
		ok, err := repo.IncrementQuantity(ctx, id, quantity, at)
		if err != nil || ok {
			return err
		}
		if _, err := repo.FindByID(ctx, id); err != nil {
			return sweetLookupError(err, id)
		}
		return apperror.Validation("quantity", fmt.Sprintf("Ensure the stock on hand stays at or below %d.", model.MaxQuantity))
	})
	if err != nil {
		logging.FromContext(ctx).Info("restock rejected", "sweet_id", id, "quantity", quantity, "error", err)
		return nil, err
	}

	logging.FromContext(ctx).Info("sweet restocked", "sweet_id", id, "quantity", quantity, "on_hand", sweet.Quantity)
	notify(ctx, s.publisher, events.NewStockEvent(events.ActionRestocked, sweet, caller, quantity))

	return &Receipt{
		Message: fmt.Sprintf("Successfully restocked %d %s(s)", quantity, sweet.Name),
		Sweet:   sweet,
	}, nil
}

// adjust runs one stock movement in a transaction: existence check, quantity
// bounds, the guarded write, then a re-read of the committed row.
func (s *inventoryService) adjust(ctx context.Context, id uuid.UUID, quantity int, write func(repository.SweetRepository, time.Time) error) (*model.Sweet, error) {
	var updated *model.Sweet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sweetRepo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			return sweetLookupError(err, id)
		}
		if quantity < 1 {
			return apperror.Validation("quantity", "Ensure this value is greater than or equal to 1.")
		}
		if quantity > model.MaxQuantity {
			return apperror.Validation("quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", model.MaxQuantity))
		}
		if err := write(repo, s.now()); err != nil {
			return err
		}

		sweet, err := repo.FindByID(ctx, id)
		if err != nil {
			return sweetLookupError(err, id)
		}
		updated = sweet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
