package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafeteria-orders/src/services/order/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository archives finalized orders in MongoDB.
type OrderRepository struct {
	collection *mongo.Collection
}

// OrderDocument is the storage model for MongoDB
type OrderDocument struct {
	ID                 string         `bson:"id" json:"orderId"`
	CustomerCategory   string         `bson:"customer_category" json:"customerCategory"`
	CustomerID         string         `bson:"customer_id" json:"customerId"`
	Items              string         `bson:"items" json:"items"`
	Lines              []LineDocument `bson:"lines" json:"lines"`
	RequestDate        string         `bson:"request_date" json:"requestDate"`
	RequestTime        string         `bson:"request_time" json:"requestTime"`
	PaymentMethod      string         `bson:"payment_method" json:"paymentMethod"`
	Total              string         `bson:"total" json:"total"`
	EstimatedMinutes   int            `bson:"estimated_minutes" json:"estimatedMinutes"`
	DeliveryMode       string         `bson:"delivery_mode" json:"deliveryMode"`
	Classroom          string         `bson:"classroom,omitempty" json:"classroom,omitempty"`
	EstimatedReadyTime string         `bson:"estimated_ready_time" json:"estimatedReadyTime"`
	RequestedAt        time.Time      `bson:"requested_at" json:"requestedAt"`
	ArchivedAt         time.Time      `bson:"archived_at" json:"archivedAt"`
}

type LineDocument struct {
	Key      string `bson:"key" json:"key"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		collection: db.Collection("orders"),
	}
}

// NewOrderDocument maps a finalized order onto its stored shape.
func NewOrderDocument(order domain.Order) OrderDocument {
	lines := make([]LineDocument, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LineDocument{Key: line.ItemKey, Quantity: line.Quantity})
	}
	return OrderDocument{
		ID:                 order.ID,
		CustomerCategory:   string(order.CustomerCategory),
		CustomerID:         order.CustomerID,
		Items:              domain.FormatLines(order.Lines),
		Lines:              lines,
		RequestDate:        order.RequestDate(),
		RequestTime:        order.RequestTime(),
		PaymentMethod:      string(order.Payment),
		Total:              order.TotalString(),
		EstimatedMinutes:   order.EstimatedMinutes,
		DeliveryMode:       string(order.Delivery),
		Classroom:          order.Classroom,
		EstimatedReadyTime: order.EstimatedReadyTime(),
		RequestedAt:        order.RequestedAt,
	}
}

// EnsureIndexes creates the unique order id index and the customer lookup index.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_category", Value: 1}, {Key: "customer_id", Value: 1}, {Key: "requested_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	doc := NewOrderDocument(order)
	doc.ArchivedAt = time.Now().Local()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to archive order %s: %w", order.ID, err)
	}
	return nil
}

// GetOrderByID returns nil, nil when the order is not archived.
func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*OrderDocument, error) {
	var doc OrderDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// ListOrdersByCustomer returns a customer's orders, newest first.
func (r *OrderRepository) ListOrdersByCustomer(ctx context.Context, category, customerID string, limit int64) ([]OrderDocument, error) {
	filter := bson.M{"customer_category": category, "customer_id": customerID}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{bson.E{Key: "requested_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []OrderDocument{}
	for cursor.Next(ctx) {
		var doc OrderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		orders = append(orders, doc)
	}
	return orders, cursor.Err()
}
