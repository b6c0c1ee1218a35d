// Package events fans stock changes out to live subscribers.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreated   Action = "sweet_created"
	ActionUpdated   Action = "sweet_updated"
	ActionDeleted   Action = "sweet_deleted"
	ActionPurchased Action = "sweet_purchased"
	ActionRestocked Action = "sweet_restocked"
)

type SweetSnapshot struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    string    `json:"price"`
	Quantity int       `json:"quantity"`
}

type Actor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// StockEvent is broadcast after a catalog or inventory change commits.
type StockEvent struct {
	Type    string        `json:"type"`
	Action  Action        `json:"action"`
	Sweet   SweetSnapshot `json:"sweet"`
	Delta   int           `json:"delta,omitempty"`
	Actor   *Actor        `json:"actor,omitempty"`
	Message string        `json:"message"`
	At      time.Time     `json:"at"`
}

// NewStockEvent snapshots sweet as it looks after the change.
func NewStockEvent(action Action, sweet *model.Sweet, caller *policy.Caller, delta int) StockEvent {
	ev := StockEvent{
		Type:   "stock_update",
		Action: action,
		Sweet: SweetSnapshot{
			ID:       sweet.ID,
			Name:     sweet.Name,
			Category: string(sweet.Category),
			Price:    sweet.Price.StringFixed(2),
			Quantity: sweet.Quantity,
		},
		Delta: delta,
		At:    time.Now().UTC(),
	}

	who := "someone"
	if caller != nil {
		ev.Actor = &Actor{ID: caller.UserID, Username: caller.Username}
		who = caller.Username
	}

	switch action {
	case ActionCreated:
		ev.Message = fmt.Sprintf("%s created '%s'", who, sweet.Name)
	case ActionUpdated:
		ev.Message = fmt.Sprintf("%s updated '%s'", who, sweet.Name)
	case ActionDeleted:
		ev.Message = fmt.Sprintf("%s deleted '%s'", who, sweet.Name)
	case ActionPurchased:
		ev.Message = fmt.Sprintf("%s purchased %d units of '%s'", who, delta, sweet.Name)
	case ActionRestocked:
		ev.Message = fmt.Sprintf("%s restocked %d units of '%s'", who, delta, sweet.Name)
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev StockEvent) error
}

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev StockEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, StockEvent) error { return nil }
