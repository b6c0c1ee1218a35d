package service

import (
	"context"
	"time"

	"sweet-shop-api/internal/events"
	"sweet-shop-api/internal/logging"
)

const publishTimeout = 5 * time.Second

// notify publishes ev in the background once the change has committed.
// A failing sink is logged and never affects the request.
func notify(ctx context.Context, pub events.Publisher, ev events.StockEvent) {
	if pub == nil {
		return
	}
	log := logging.FromContext(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, ev); err != nil {
			log.Warn("stock event publish failed", "action", ev.Action, "sweet_id", ev.Sweet.ID, "error", err)
		}
	}()
}
