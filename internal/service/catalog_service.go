package service

import (
	"context"
	"errors"
	"strings"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SweetInput is the writable part of a sweet. Nil fields were not supplied.
type SweetInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *model.Category  `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Image       *string          `json:"image"`
}

// SearchParams are raw query-string filters; empty strings are ignored.
type SearchParams struct {
	// Name is matched as given, surrounding spaces included.
	Name     string
	Category string
	MinPrice string
	MaxPrice string
}

type CatalogService interface {
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, params SearchParams) ([]model.Sweet, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Sweet, error)
	Create(ctx context.Context, caller *policy.Caller, in *SweetInput) (*model.Sweet, error)
	// Replace overwrites every writable field; omitted optional fields reset to defaults.
	Replace(ctx context.Context, caller *policy.Caller, id uuid.UUID, in *SweetInput) (*model.Sweet, error)
	// Patch changes only the supplied fields.
	Patch(ctx context.Context, caller *policy.Caller, id uuid.UUID, in *SweetInput) (*model.Sweet, error)
	Delete(ctx context.Context, caller *policy.Caller, id uuid.UUID) error
}

type catalogService struct {
	sweetRepo repository.SweetRepository
	db        *gorm.DB
	publisher events.Publisher
}

func NewCatalogService(sweetRepo repository.SweetRepository, db *gorm.DB, publisher events.Publisher) CatalogService {
	return &catalogService{
		sweetRepo: sweetRepo,
		db:        db,
		publisher: publisher,
	}
}

func (s *catalogService) List(ctx context.Context) ([]model.Sweet, error) {
	return s.sweetRepo.FindAll(ctx)
}

func (s *catalogService) Search(ctx context.Context, params SearchParams) ([]model.Sweet, error) {
	filter := repository.SweetFilter{
		Name:     params.Name,
		Category: model.Category(strings.TrimSpace(params.Category)),
	}

	verr := &apperror.ValidationError{}
	filter.MinPrice = parsePriceBound(verr, "min_price", params.MinPrice)
	filter.MaxPrice = parsePriceBound(verr, "max_price", params.MaxPrice)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return s.sweetRepo.Search(ctx, filter)
}

func parsePriceBound(verr *apperror.ValidationError, field, raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "A valid number is required.")
		return nil
	}
	return &d
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	sweet, err := s.sweetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, sweetLookupError(err, id)
	}
	return sweet, nil
}

func (s *catalogService) Create(ctx context.Context, caller *policy.Caller, in *SweetInput) (*model.Sweet, error) {
	sweet := &model.Sweet{Category: model.CategoryOther}
	if err := applyInput(sweet, in, true); err != nil {
		return nil, err
	}

	if err := s.sweetRepo.Create(ctx, sweet); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("sweet created", "sweet_id", sweet.ID, "name", sweet.Name)
	notify(ctx, s.publisher, events.NewStockEvent(events.ActionCreated, sweet, caller, 0))
	return sweet, nil
}

func (s *catalogService) Replace(ctx context.Context, caller *policy.Caller, id uuid.UUID, in *SweetInput) (*model.Sweet, error) {
	return s.update(ctx, caller, id, func(sweet *model.Sweet) error {
		// Full replace: start from defaults, keep identity and creation time
		fresh := model.Sweet{BaseModel: sweet.BaseModel, Category: model.CategoryOther}
		if err := applyInput(&fresh, in, true); err != nil {
			return err
		}
		*sweet = fresh
		return nil
	})
}

func (s *catalogService) Patch(ctx context.Context, caller *policy.Caller, id uuid.UUID, in *SweetInput) (*model.Sweet, error) {
	return s.update(ctx, caller, id, func(sweet *model.Sweet) error {
		return applyInput(sweet, in, false)
	})
}

func (s *catalogService) update(ctx context.Context, caller *policy.Caller, id uuid.UUID, mutate func(*model.Sweet) error) (*model.Sweet, error) {
	var updated *model.Sweet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sweetRepo.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return sweetLookupError(err, id)
		}
		if err := mutate(existing); err != nil {
			return err
		}
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("sweet updated", "sweet_id", updated.ID)
	notify(ctx, s.publisher, events.NewStockEvent(events.ActionUpdated, updated, caller, 0))
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, caller *policy.Caller, id uuid.UUID) error {
	var deleted *model.Sweet

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sweetRepo.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return sweetLookupError(err, id)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return sweetLookupError(err, id)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("sweet deleted", "sweet_id", id)
	notify(ctx, s.publisher, events.NewStockEvent(events.ActionDeleted, deleted, caller, 0))
	return nil
}

// applyInput copies in onto sweet and validates the result. With full set,
// name and price must be supplied.
func applyInput(sweet *model.Sweet, in *SweetInput, full bool) error {
	if in == nil {
		in = &SweetInput{}
	}
	verr := &apperror.ValidationError{}

	if in.Name != nil {
		sweet.Name = strings.TrimSpace(*in.Name)
	} else if full {
		verr.Add("name", "This field is required.")
	}
	if in.Price != nil {
		sweet.Price = *in.Price
	} else if full {
		verr.Add("price", "This field is required.")
	}
	if in.Description != nil {
		sweet.Description = *in.Description
	}
	if in.Category != nil && *in.Category != "" {
		sweet.Category = *in.Category
	}
	if in.Quantity != nil {
		sweet.Quantity = *in.Quantity
	}
	if in.Image != nil {
		sweet.Image = *in.Image
	}

	for _, e := range validator.ValidateStruct(sweet) {
		verr.Add(e.FailedField, e.Message())
	}
	return verr.OrNil()
}

func sweetLookupError(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("Sweet", id.String())
	}
	return err
}
