package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chocolateBar() *model.Sweet {
	s := &model.Sweet{Name: "Chocolate Bar", Category: model.CategoryChocolate, Price: decimal.RequireFromString("2.5"), Quantity: 8}
	s.ID = uuid.New()
	return s
}

func TestNewStockEvent(t *testing.T) {
	caller := &policy.Caller{UserID: uuid.New(), Username: "testuser"}
	ev := NewStockEvent(ActionPurchased, chocolateBar(), caller, 2)

	assert.Equal(t, "stock_update", ev.Type)
	assert.Equal(t, "2.50", ev.Sweet.Price)
	assert.Equal(t, 8, ev.Sweet.Quantity)
	require.NotNil(t, ev.Actor)
	assert.Equal(t, "testuser", ev.Actor.Username)
	assert.Equal(t, "testuser purchased 2 units of 'Chocolate Bar'", ev.Message)

	anon := NewStockEvent(ActionDeleted, chocolateBar(), nil, 0)
	assert.Nil(t, anon.Actor)
	assert.Equal(t, "someone deleted 'Chocolate Bar'", anon.Message)
}

func TestToMessage_KeyedBySweet(t *testing.T) {
	ev := NewStockEvent(ActionRestocked, chocolateBar(), nil, 50)
	msg, err := toMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, ev.Sweet.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "sweet_restocked", string(msg.Headers[0].Value))

	var decoded StockEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ActionRestocked, decoded.Action)
	assert.Equal(t, 50, decoded.Delta)
}

type recorder struct {
	got []StockEvent
	err error
}

func (r *recorder) Publish(_ context.Context, ev StockEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}

	err := Multi{ok, nil, failing, Nop{}}.Publish(context.Background(), NewStockEvent(ActionCreated, chocolateBar(), nil, 0))
	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, ok.got, 1)
	assert.Len(t, failing.got, 1)
}
