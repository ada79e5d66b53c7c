package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
)

// Catalog is the read side of the cafeteria catalogs the service needs.
type Catalog interface {
	MenuLookup
	ListMenu() []catalog.MenuItem
	FindCustomer(category catalog.Category, publicID string) (catalog.Customer, bool)
}

type OrderService interface {
	ListMenu() []catalog.MenuItem
	FindCustomer(category catalog.Category, publicID string) (catalog.Customer, bool)
	ComputeTotal(lines []OrderLine) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, request OrderRequest) (Order, error)
	RefundOrder(ctx context.Context, order Order) error
}

type orderService struct {
	logger  log.Logger
	catalog Catalog
	now     func() time.Time
	locks   *keyedMutex
}

type Option func(*orderService)

// WithClock replaces time.Now as the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *orderService) {
		s.now = now
	}
}

func NewOrderService(logger log.Logger, catalog Catalog, opts ...Option) OrderService {
	s := &orderService{
		logger:  logger,
		catalog: catalog,
		now:     time.Now,
		locks:   newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) ListMenu() []catalog.MenuItem {
	return s.catalog.ListMenu()
}

func (s *orderService) FindCustomer(category catalog.Category, publicID string) (catalog.Customer, bool) {
	return s.catalog.FindCustomer(category, publicID)
}

func (s *orderService) ComputeTotal(lines []OrderLine) (decimal.Decimal, error) {
	return ComputeTotal(s.catalog, lines)
}

// CreateOrder validates, prices and finalizes an order in one call. Either
// it returns a complete Order or an error with no catalog state changed;
// a credit debit is the last step and only happens once every check passed.
func (s *orderService) CreateOrder(ctx context.Context, request OrderRequest) (Order, error) {
	order, err := s.createOrder(request)
	if err != nil {
		s.logger.WarnWithExtra(ctx, "Order rejected", map[string]any{
			"CustomerCategory": string(request.Category),
			"CustomerId":       request.CustomerID,
			"Reason":           err.Error(),
		})
		return Order{}, err
	}

	s.logger.InfoWithExtra(ctx, fmt.Sprintf("Order %s created", order.ID), map[string]any{
		"OrderId":          order.ID,
		"CustomerId":       order.CustomerID,
		"Total":            order.TotalString(),
		"PaymentMethod":    string(order.Payment),
		"EstimatedMinutes": order.EstimatedMinutes,
	})
	return order, nil
}

func (s *orderService) createOrder(request OrderRequest) (Order, error) {
	if len(request.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !request.Payment.IsValid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, request.Payment)
	}
	if !request.Delivery.IsValid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidDeliveryMode, request.Delivery)
	}

	classroom := strings.TrimSpace(request.Classroom)
	if request.Delivery == DeliveryClassroom && classroom == "" {
		return Order{}, ErrMissingClassroom
	}
	if request.Delivery == DeliveryCounter {
		classroom = ""
	}

	customer, ok := s.catalog.FindCustomer(request.Category, request.CustomerID)
	if !ok {
		return Order{}, ErrCustomerNotFound
	}

	lines := normalizeLines(request.Items)
	if len(lines) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity > MaxLineQuantity {
			return Order{}, fmt.Errorf("%w: %s x %d", ErrQuantityTooLarge, line.ItemKey, line.Quantity)
		}
	}

	total, err := ComputeTotal(s.catalog, lines)
	if err != nil {
		return Order{}, err
	}

	// Credit payments read, compare and later debit the balance; hold the
	// customer's lock across that window so concurrent orders serialize.
	if request.Payment == PaymentCredit {
		unlock := s.locks.Lock(lockKey(customer))
		defer unlock()
	}

	if err := ValidatePayment(customer, request.Payment, total); err != nil {
		return Order{}, err
	}

	now := s.now()
	order := Order{
		ID:               newOrderID(now, customer.PublicID()),
		CustomerCategory: customer.Category(),
		CustomerID:       customer.PublicID(),
		Lines:            lines,
		RequestedAt:      now,
		Payment:          request.Payment,
		Total:            total,
		EstimatedMinutes: EstimateMinutes(lines),
		Delivery:         request.Delivery,
		Classroom:        classroom,
	}

	ApplyPayment(customer, request.Payment, total)
	return order, nil
}

// RefundOrder returns a credit-paid order's total to the student. It is the
// compensation for an order that was created but could not be recorded.
func (s *orderService) RefundOrder(ctx context.Context, order Order) error {
	if order.Payment != PaymentCredit {
		return nil
	}
	customer, ok := s.catalog.FindCustomer(order.CustomerCategory, order.CustomerID)
	if !ok {
		return ErrCustomerNotFound
	}
	student, ok := customer.(*catalog.Student)
	if !ok {
		return ErrCreditNotAllowed
	}

	unlock := s.locks.Lock(lockKey(customer))
	defer unlock()

	balance := student.Refund(order.Total)
	s.logger.InfoWithExtra(ctx, fmt.Sprintf("Credit refunded for order %s", order.ID), map[string]any{
		"OrderId":    order.ID,
		"CustomerId": order.CustomerID,
		"Amount":     order.TotalString(),
		"Balance":    balance.StringFixed(2),
	})
	return nil
}

func lockKey(customer catalog.Customer) string {
	return string(customer.Category()) + "/" + customer.PublicID()
}
