package dlq

import (
	"context"
	"encoding/json"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/events"
)

// ReplayStore keeps dead-lettered events until they are replayed.
type ReplayStore interface {
	StoreEventForReplay(ctx context.Context, orderID, topic string, eventData []byte) error
}

// DLQHandler moves dead-lettered order events into the replay store.
type DLQHandler struct {
	store  ReplayStore
	logger log.Logger
}

func NewDLQHandler(store ReplayStore, logger log.Logger) *DLQHandler {
	return &DLQHandler{
		store:  store,
		logger: logger,
	}
}

// Handle stores a dead-lettered OrderPlaced event for replay. Bodies that
// are not JSON cannot be replayed and are dropped after logging.
func (h *DLQHandler) Handle(ctx context.Context, msgBody []byte) error {
	h.logger.Info(ctx, "Processing OrderPlaced DLQ event")

	if !json.Valid(msgBody) {
		h.logger.Warn(ctx, "Dropping dead-lettered message that is not valid JSON")
		return nil
	}

	var event events.OrderPlacedEvent
	orderID := "unknown"
	if err := json.Unmarshal(msgBody, &event); err == nil && event.OrderID != "" {
		orderID = event.OrderID
	}

	if err := h.store.StoreEventForReplay(ctx, orderID, events.OrderPlaced, msgBody); err != nil {
		h.logger.Exception(ctx, "Failed to store OrderPlaced DLQ event for replay", err)
		return err
	}

	h.logger.Info(ctx, "OrderPlaced DLQ event stored for replay, orderID: "+orderID)
	return nil
}
