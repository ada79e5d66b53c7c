package domain

import (
	"strings"
	"time"

	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentCredit:
		return true
	default:
		return false
	}
}

type DeliveryMode string

const (
	DeliveryClassroom DeliveryMode = "classroom"
	DeliveryCounter   DeliveryMode = "counter"
)

func (d DeliveryMode) IsValid() bool {
	switch d {
	case DeliveryClassroom, DeliveryCounter:
		return true
	default:
		return false
	}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	idLayout   = "20060102150405"
	idPrefix   = "ORD"
)

type OrderLine struct {
	ItemKey  string
	Quantity int
}

// RawItem is a caller-supplied selection before normalization.
type RawItem struct {
	Key      string
	Quantity int
}

type OrderRequest struct {
	Category   catalog.Category
	CustomerID string
	Items      []RawItem
	Payment    PaymentMethod
	Delivery   DeliveryMode
	Classroom  string
}

type Order struct {
	ID               string
	CustomerCategory catalog.Category
	CustomerID       string
	Lines            []OrderLine
	RequestedAt      time.Time
	Payment          PaymentMethod
	Total            decimal.Decimal
	EstimatedMinutes int
	Delivery         DeliveryMode
	// Classroom is empty unless Delivery is DeliveryClassroom.
	Classroom string
}

func (o Order) RequestDate() string {
	return o.RequestedAt.Format(dateLayout)
}

func (o Order) RequestTime() string {
	return o.RequestedAt.Format(timeLayout)
}

// EstimatedReadyTime is the minute-resolution request time plus the
// estimated preparation minutes, formatted as HH:MM.
func (o Order) EstimatedReadyTime() string {
	t := o.RequestedAt
	requested := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	return requested.Add(time.Duration(o.EstimatedMinutes) * time.Minute).Format(timeLayout)
}

// TotalString renders the total with exactly two decimals.
func (o Order) TotalString() string {
	return o.Total.StringFixed(2)
}

func newOrderID(at time.Time, customerID string) string {
	return strings.Join([]string{idPrefix, at.Format(idLayout), customerID}, "-")
}
