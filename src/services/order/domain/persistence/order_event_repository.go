package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventStatusFailed    = "failed"
	EventStatusCompleted = "completed"
	EventStatusReplaying = "replaying"
)

// OrderEvent is an event that could not be published and waits for replay.
type OrderEvent struct {
	ID         string     `bson:"_id,omitempty"`
	OrderID    string     `bson:"orderId"`
	Topic      string     `bson:"topic"`
	EventData  []byte     `bson:"eventData"`
	CreatedAt  time.Time  `bson:"createdAt"`
	Replayed   bool       `bson:"replayed"`
	ReplayedAt *time.Time `bson:"replayedAt,omitempty"`
	Status     string     `bson:"status"`
}

func (r *OrderRepository) events() *mongo.Collection {
	return r.collection.Database().Collection("order_events")
}

// StoreEventForReplay keeps an unpublished event so it can be replayed later.
func (r *OrderRepository) StoreEventForReplay(ctx context.Context, orderID, topic string, eventData []byte) error {
	if !json.Valid(eventData) {
		return errors.New("invalid JSON event data")
	}

	eventDoc := OrderEvent{
		ID:        primitive.NewObjectID().Hex(),
		OrderID:   orderID,
		Topic:     topic,
		EventData: eventData,
		CreatedAt: time.Now().Local(),
		Status:    EventStatusFailed,
	}

	_, err := r.events().InsertOne(ctx, eventDoc)
	return err
}

// GetUnreplayedEvents returns failed events oldest first.
func (r *OrderRepository) GetUnreplayedEvents(ctx context.Context, limit int64) ([]OrderEvent, error) {
	filter := bson.M{
		"replayed": bson.M{"$ne": true},
		"status":   bson.M{"$in": []string{EventStatusFailed, EventStatusReplaying}},
	}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "createdAt", Value: 1}})
	cursor, err := r.events().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []OrderEvent
	for cursor.Next(ctx) {
		var evt OrderEvent
		if err := cursor.Decode(&evt); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, cursor.Err()
}

func (r *OrderRepository) MarkEventAsReplaying(ctx context.Context, eventID string) error {
	return r.setEventStatus(ctx, eventID, bson.M{"status": EventStatusReplaying})
}

func (r *OrderRepository) MarkEventAsCompleted(ctx context.Context, eventID string) error {
	return r.setEventStatus(ctx, eventID, bson.M{
		"status":     EventStatusCompleted,
		"replayed":   true,
		"replayedAt": time.Now().Local(),
	})
}

func (r *OrderRepository) MarkEventAsFailed(ctx context.Context, eventID string) error {
	return r.setEventStatus(ctx, eventID, bson.M{"status": EventStatusFailed})
}

func (r *OrderRepository) setEventStatus(ctx context.Context, eventID string, fields bson.M) error {
	_, err := r.events().UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": fields})
	return err
}
