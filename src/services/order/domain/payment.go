package domain

import (
	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
)

// ValidatePayment checks that customer may pay total with method. Only
// credit has eligibility rules; cash and card never look at the balance.
func ValidatePayment(customer catalog.Customer, method PaymentMethod, total decimal.Decimal) error {
	if method != PaymentCredit {
		return nil
	}
	student, ok := customer.(*catalog.Student)
	if !ok || customer.Category() != catalog.CategoryStudent {
		return ErrCreditNotAllowed
	}
	if student.AvailableCredit().LessThan(total) {
		return ErrInsufficientCredit
	}
	return nil
}

// ApplyPayment debits a student's credit for credit payments and is a no-op
// otherwise. Callers must run ValidatePayment first.
func ApplyPayment(customer catalog.Customer, method PaymentMethod, total decimal.Decimal) {
	if method != PaymentCredit {
		return
	}
	if student, ok := customer.(*catalog.Student); ok {
		student.Debit(total)
	}
}
