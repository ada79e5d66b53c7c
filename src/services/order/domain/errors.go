package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrMissingClassroom     = errors.New("classroom is required for classroom delivery")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCreditNotAllowed     = errors.New("credit payment is only available to students")
	ErrInsufficientCredit   = errors.New("insufficient student credit")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDeliveryMode  = errors.New("invalid delivery mode")
	ErrMalformedOrderLine   = errors.New("malformed order line")
	ErrQuantityTooLarge     = fmt.Errorf("quantity must not exceed %d per line", MaxLineQuantity)
)

// UnknownMenuKeyError reports an order line whose key is not on the menu.
type UnknownMenuKeyError struct {
	Key string
}

func (e *UnknownMenuKeyError) Error() string {
	return fmt.Sprintf("unknown menu key: %s", e.Key)
}

// IsRejection reports whether err is a caller input problem rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	var unknownKey *UnknownMenuKeyError
	switch {
	case errors.As(err, &unknownKey),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrMissingClassroom),
		errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrCreditNotAllowed),
		errors.Is(err, ErrInsufficientCredit),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidDeliveryMode),
		errors.Is(err, ErrQuantityTooLarge):
		return true
	default:
		return false
	}
}
