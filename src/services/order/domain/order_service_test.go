package domain

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 5, 12, 30, 45, 0, time.UTC)

type fixture struct {
	service OrderService
	student *catalog.Student
}

func newFixture(credit string) fixture {
	student := catalog.NewStudent("2023001", "Ana Ruiz", "Systems", "2004-05-12", decimal.RequireFromString(credit))
	cat := catalog.New(
		[]catalog.MenuItem{
			{Key: "A01", Name: "Sandwich", UnitPrice: decimal.RequireFromString("10.00")},
			{Key: "B01", Name: "Coffee", UnitPrice: decimal.RequireFromString("25.00")},
		},
		[]*catalog.Student{student},
		[]*catalog.Instructor{{ID: "E100", FullName: "Luis Mora", Shift: "morning", Degree: "MSc"}},
		[]*catalog.Staff{{ID: "S200", FullName: "Rosa Diaz", Title: "Registrar"}},
	)
	logger := log.NewLoggerWithOutput(io.Discard)
	service := NewOrderService(logger, cat, WithClock(func() time.Time { return fixedNow }))
	return fixture{service: service, student: student}
}

func studentCreditRequest() OrderRequest {
	return OrderRequest{
		Category:   catalog.CategoryStudent,
		CustomerID: "2023001",
		Items:      []RawItem{{Key: "A01", Quantity: 2}, {Key: "B01", Quantity: 1}},
		Payment:    PaymentCredit,
		Delivery:   DeliveryClassroom,
		Classroom:  "B-203",
	}
}

func TestCreateOrder_StudentCreditToClassroom(t *testing.T) {
	f := newFixture("100.00")

	order, err := f.service.CreateOrder(context.Background(), studentCreditRequest())

	require.NoError(t, err)
	assert.Equal(t, "ORD-20240305123045-2023001", order.ID)
	assert.Equal(t, catalog.CategoryStudent, order.CustomerCategory)
	assert.Equal(t, "2023001", order.CustomerID)
	assert.Equal(t, []OrderLine{{ItemKey: "A01", Quantity: 2}, {ItemKey: "B01", Quantity: 1}}, order.Lines)
	assert.Equal(t, "45.00", order.TotalString())
	assert.Equal(t, 14, order.EstimatedMinutes)
	assert.Equal(t, DeliveryClassroom, order.Delivery)
	assert.Equal(t, "B-203", order.Classroom)
	assert.Equal(t, "2024-03-05", order.RequestDate())
	assert.Equal(t, "12:30", order.RequestTime())
	assert.Equal(t, "12:44", order.EstimatedReadyTime())
	assert.Equal(t, "A01:2|B01:1", FormatLines(order.Lines))
	assert.Equal(t, "55.00", f.student.AvailableCredit().StringFixed(2))
}

func TestCreateOrder_InsufficientCreditLeavesBalance(t *testing.T) {
	f := newFixture("10.00")

	_, err := f.service.CreateOrder(context.Background(), studentCreditRequest())

	assert.ErrorIs(t, err, ErrInsufficientCredit)
	assert.Equal(t, "10.00", f.student.AvailableCredit().StringFixed(2))
}

func TestCreateOrder_UnknownKeyFailsBeforeDebit(t *testing.T) {
	f := newFixture("100.00")
	request := studentCreditRequest()
	request.Items = append(request.Items, RawItem{Key: "Z99", Quantity: 1})

	_, err := f.service.CreateOrder(context.Background(), request)

	var unknown *UnknownMenuKeyError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Z99", unknown.Key)
	assert.Equal(t, "100.00", f.student.AvailableCredit().StringFixed(2))
}

func TestCreateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *OrderRequest)
		wantErr error
	}{
		{
			name:    "no items",
			mutate:  func(r *OrderRequest) { r.Items = nil },
			wantErr: ErrEmptyOrder,
		},
		{
			name: "empty order is checked before classroom",
			mutate: func(r *OrderRequest) {
				r.Items = nil
				r.Classroom = ""
			},
			wantErr: ErrEmptyOrder,
		},
		{
			name:    "classroom delivery without classroom",
			mutate:  func(r *OrderRequest) { r.Classroom = "" },
			wantErr: ErrMissingClassroom,
		},
		{
			name:    "blank classroom label",
			mutate:  func(r *OrderRequest) { r.Classroom = "   " },
			wantErr: ErrMissingClassroom,
		},
		{
			name: "classroom is checked before customer",
			mutate: func(r *OrderRequest) {
				r.Classroom = ""
				r.CustomerID = "missing"
			},
			wantErr: ErrMissingClassroom,
		},
		{
			name:    "unknown customer",
			mutate:  func(r *OrderRequest) { r.CustomerID = "9999999" },
			wantErr: ErrCustomerNotFound,
		},
		{
			name:    "unknown category",
			mutate:  func(r *OrderRequest) { r.Category = catalog.Category("visitor") },
			wantErr: ErrCustomerNotFound,
		},
		{
			name:    "all quantities non-positive",
			mutate:  func(r *OrderRequest) { r.Items = []RawItem{{Key: "A01", Quantity: 0}, {Key: "B01", Quantity: -2}} },
			wantErr: ErrEmptyOrder,
		},
		{
			name: "instructor paying with credit",
			mutate: func(r *OrderRequest) {
				r.Category = catalog.CategoryInstructor
				r.CustomerID = "E100"
			},
			wantErr: ErrCreditNotAllowed,
		},
		{
			name: "staff paying with credit",
			mutate: func(r *OrderRequest) {
				r.Category = catalog.CategoryStaff
				r.CustomerID = "S200"
			},
			wantErr: ErrCreditNotAllowed,
		},
		{
			name:    "quantity above line limit",
			mutate:  func(r *OrderRequest) { r.Items = []RawItem{{Key: "A01", Quantity: math.MaxInt / 3}} },
			wantErr: ErrQuantityTooLarge,
		},
		{
			name:    "one oversized line among valid ones",
			mutate:  func(r *OrderRequest) { r.Items = []RawItem{{Key: "A01", Quantity: math.MaxInt}, {Key: "B01", Quantity: 2}} },
			wantErr: ErrQuantityTooLarge,
		},
		{
			name:    "unsupported payment method",
			mutate:  func(r *OrderRequest) { r.Payment = PaymentMethod("voucher") },
			wantErr: ErrInvalidPaymentMethod,
		},
		{
			name:    "unsupported delivery mode",
			mutate:  func(r *OrderRequest) { r.Delivery = DeliveryMode("drone") },
			wantErr: ErrInvalidDeliveryMode,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture("100.00")
			request := studentCreditRequest()
			tc.mutate(&request)

			order, err := f.service.CreateOrder(context.Background(), request)

			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, IsRejection(err))
			assert.Empty(t, order.ID)
			assert.Equal(t, "100.00", f.student.AvailableCredit().StringFixed(2))
		})
	}
}

func TestCreateOrder_DropsNonPositiveQuantities(t *testing.T) {
	f := newFixture("100.00")
	request := studentCreditRequest()
	request.Items = []RawItem{{Key: "A01", Quantity: 0}, {Key: "B01", Quantity: 1}, {Key: "Z99", Quantity: -1}}

	order, err := f.service.CreateOrder(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, []OrderLine{{ItemKey: "B01", Quantity: 1}}, order.Lines)
	assert.Equal(t, "25.00", order.TotalString())
	assert.Equal(t, 8, order.EstimatedMinutes)
}

func TestCreateOrder_CounterDeliveryIgnoresClassroom(t *testing.T) {
	f := newFixture("100.00")
	request := studentCreditRequest()
	request.Payment = PaymentCash
	request.Delivery = DeliveryCounter
	request.Classroom = "B-203"

	order, err := f.service.CreateOrder(context.Background(), request)

	require.NoError(t, err)
	assert.Empty(t, order.Classroom)
	assert.Equal(t, "100.00", f.student.AvailableCredit().StringFixed(2))
}

func TestCreateOrder_NonStudentCardPayment(t *testing.T) {
	f := newFixture("100.00")
	request := OrderRequest{
		Category:   catalog.CategoryInstructor,
		CustomerID: "E100",
		Items:      []RawItem{{Key: "B01", Quantity: 4}},
		Payment:    PaymentCard,
		Delivery:   DeliveryCounter,
	}

	order, err := f.service.CreateOrder(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, "ORD-20240305123045-E100", order.ID)
	assert.Equal(t, catalog.CategoryInstructor, order.CustomerCategory)
	assert.Equal(t, "100.00", order.TotalString())
	assert.Equal(t, 17, order.EstimatedMinutes)
}

func TestCreateOrder_ConcurrentCreditNeverOverdraws(t *testing.T) {
	f := newFixture("100.00")
	request := studentCreditRequest()
	request.Items = []RawItem{{Key: "B01", Quantity: 1}}

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.CreateOrder(context.Background(), request); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientCredit)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, succeeded)
	assert.Equal(t, "0.00", f.student.AvailableCredit().StringFixed(2))
}

func TestRefundOrder(t *testing.T) {
	f := newFixture("100.00")
	order, err := f.service.CreateOrder(context.Background(), studentCreditRequest())
	require.NoError(t, err)
	require.Equal(t, "55.00", f.student.AvailableCredit().StringFixed(2))

	require.NoError(t, f.service.RefundOrder(context.Background(), order))

	assert.Equal(t, "100.00", f.student.AvailableCredit().StringFixed(2))
}

func TestRefundOrder_NonCreditIsNoop(t *testing.T) {
	f := newFixture("100.00")

	err := f.service.RefundOrder(context.Background(), Order{Payment: PaymentCash, Total: decimal.NewFromInt(10)})

	require.NoError(t, err)
	assert.Equal(t, "100.00", f.student.AvailableCredit().StringFixed(2))
}

func TestQueries(t *testing.T) {
	f := newFixture("100.00")

	menu := f.service.ListMenu()
	require.Len(t, menu, 2)
	assert.Equal(t, "A01", menu[0].Key)

	customer, ok := f.service.FindCustomer(catalog.CategoryStaff, "S200")
	require.True(t, ok)
	assert.Equal(t, "Rosa Diaz", customer.Name())

	total, err := f.service.ComputeTotal([]OrderLine{{ItemKey: "B01", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "50.00", total.StringFixed(2))
}

func TestCreateOrder_QuantityAtLineLimit(t *testing.T) {
	f := newFixture("100.00")
	request := studentCreditRequest()
	request.Payment = PaymentCash
	request.Items = []RawItem{{Key: "A01", Quantity: MaxLineQuantity}}

	order, err := f.service.CreateOrder(context.Background(), request)

	require.NoError(t, err)
	assert.Equal(t, 5+3*MaxLineQuantity, order.EstimatedMinutes)
	assert.Equal(t, "10000.00", order.TotalString())
}
