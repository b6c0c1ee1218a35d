package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func testEvent() events.StockEvent {
	s := &model.Sweet{Name: "Gummy Bears", Category: model.CategoryCandy, Price: decimal.RequireFromString("1.50"), Quantity: 3}
	s.ID = uuid.New()
	return events.NewStockEvent(events.ActionPurchased, s, nil, 1)
}

func TestHub_BroadcastsAndDropsBrokenClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Close()

	good := &fakeConn{}
	broken := &fakeConn{fail: true}
	hub.Register <- good
	hub.Register <- broken

	require.NoError(t, hub.Publish(context.Background(), testEvent()))

	require.Eventually(t, func() bool { return good.count() == 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	var ev events.StockEvent
	require.NoError(t, json.Unmarshal(good.messages[0], &ev))
	assert.Equal(t, events.ActionPurchased, ev.Action)
	assert.Equal(t, "Gummy Bears", ev.Sweet.Name)
}

func TestHub_PublishRespectsContextAndClose(t *testing.T) {
	hub := NewHub(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, hub.Publish(ctx, testEvent()), context.DeadlineExceeded)

	hub.Close()
	assert.NoError(t, hub.Publish(context.Background(), testEvent()))
}

func TestHub_JoinAndLeave(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	conn := &fakeConn{}
	require.True(t, hub.Join(conn))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Leave(conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	hub.Close()

	stopped := NewHub(nil)
	stopped.Close()
	assert.False(t, stopped.Join(&fakeConn{}))
	stopped.Leave(conn)
}
