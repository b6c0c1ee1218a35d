package service_test

import (
	"context"
	"sync"
	"testing"

	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/internal/service"
	"sweet-shop-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.StockEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, ev)
	return nil
}

func (p *recordingPublisher) actions() []events.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Action, len(p.got))
	for i, ev := range p.got {
		out[i] = ev.Action
	}
	return out
}

type env struct {
	db        *gorm.DB
	sweets    repository.SweetRepository
	catalog   service.CatalogService
	inventory service.InventoryService
	events    *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	sweets := repository.NewSweetRepo(db)
	pub := &recordingPublisher{}
	return &env{
		db:        db,
		sweets:    sweets,
		catalog:   service.NewCatalogService(sweets, db, pub),
		inventory: service.NewInventoryService(sweets, db, pub),
		events:    pub,
	}
}

func (e *env) seed(t *testing.T, name string, cat model.Category, price string, qty int) *model.Sweet {
	t.Helper()
	s := &model.Sweet{Name: name, Category: cat, Price: decimal.RequireFromString(price), Quantity: qty}
	require.NoError(t, e.sweets.Create(context.Background(), s))
	return s
}

func (e *env) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	s, err := e.sweets.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s.Quantity
}

var (
	testUser  = &policy.Caller{UserID: uuid.New(), Username: "testuser"}
	testAdmin = &policy.Caller{UserID: uuid.New(), Username: "admin", IsStaff: true}
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func catPtr(c model.Category) *model.Category { return &c }
