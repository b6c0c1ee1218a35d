package repository

import (
	"context"
	"strings"
	"time"

	"sweet-shop-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SweetFilter narrows a catalog search. Zero values mean "no constraint";
// all supplied constraints must hold.
type SweetFilter struct {
	Name     string
	Category model.Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type SweetRepository interface {
	// WithTx binds the repository to a running transaction.
	WithTx(tx *gorm.DB) SweetRepository

	Create(ctx context.Context, sweet *model.Sweet) error
	FindAll(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, filter SweetFilter) ([]model.Sweet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error)
	Update(ctx context.Context, sweet *model.Sweet) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementQuantity subtracts by only if at least by units are on hand.
	// It reports false when the guard did not match (unknown id or short stock).
	DecrementQuantity(ctx context.Context, id uuid.UUID, by int, at time.Time) (bool, error)
	// IncrementQuantity reports false for an unknown id or when the result would
	// pass model.MaxQuantity. by must not exceed model.MaxQuantity.
	IncrementQuantity(ctx context.Context, id uuid.UUID, by int, at time.Time) (bool, error)
}

type sweetRepo struct {
	db *gorm.DB
}

func NewSweetRepo(db *gorm.DB) SweetRepository {
	return &sweetRepo{db}
}

func (r *sweetRepo) WithTx(tx *gorm.DB) SweetRepository {
	return &sweetRepo{tx}
}

func (r *sweetRepo) Create(ctx context.Context, sweet *model.Sweet) error {
	return r.db.WithContext(ctx).Create(sweet).Error
}

func (r *sweetRepo) FindAll(ctx context.Context) ([]model.Sweet, error) {
	return r.Search(ctx, SweetFilter{})
}

func (r *sweetRepo) Search(ctx context.Context, filter SweetFilter) ([]model.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&model.Sweet{})

	if filter.Name != "" {
		clause, pattern := nameContains(r.db.Dialector.Name(), filter.Name)
		q = q.Where(clause, pattern)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	sweets := []model.Sweet{}
	err := q.Order("name ASC").Order("id ASC").Find(&sweets).Error
	return sweets, err
}

func (r *sweetRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	var sweet model.Sweet
	if err := r.db.WithContext(ctx).First(&sweet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *sweetRepo) Update(ctx context.Context, sweet *model.Sweet) error {
	return r.db.WithContext(ctx).Save(sweet).Error
}

// Delete returns gorm.ErrRecordNotFound when nothing was removed.
func (r *sweetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Sweet{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sweetRepo) DecrementQuantity(ctx context.Context, id uuid.UUID, by int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sweet{}).
		Where("id = ? AND quantity >= ?", id, by).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", by),
			"updated_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *sweetRepo) IncrementQuantity(ctx context.Context, id uuid.UUID, by int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sweet{}).
		Where("id = ? AND quantity <= ?", id, model.MaxQuantity-by).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", by),
			"updated_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

// nameContains builds a case-insensitive substring match. sqlite's LIKE only
// folds ASCII letters, so there "éclair" does not find "Éclair".
func nameContains(dialect, name string) (string, string) {
	pattern := "%" + escapeLike(name) + "%"
	if dialect == "postgres" {
		return `name ILIKE ? ESCAPE '\'`, pattern
	}
	return `name LIKE ? ESCAPE '\'`, pattern
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
