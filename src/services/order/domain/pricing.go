package domain

import (
	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
)

const (
	basePreparationMinutes = 5
	minutesPerUnit         = 3

	// MaxLineQuantity is the most units one order line may carry.
	MaxLineQuantity = 1000
)

// MenuLookup resolves menu keys to items.
type MenuLookup interface {
	MenuItem(key string) (catalog.MenuItem, bool)
}

// ComputeTotal sums unitPrice x quantity over lines and rounds the result
// half-to-even to cents. The arithmetic is exact decimal, so the rounding
// only applies to sub-cent prices.
func ComputeTotal(menu MenuLookup, lines []OrderLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		item, ok := menu.MenuItem(line.ItemKey)
		if !ok {
			return decimal.Zero, &UnknownMenuKeyError{Key: line.ItemKey}
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total.RoundBank(2), nil
}

// EstimateMinutes is 5 minutes of base overhead plus 3 per requested unit,
// counting at least one unit.
func EstimateMinutes(lines []OrderLine) int {
	units := 0
	for _, line := range lines {
		units += line.Quantity
	}
	return basePreparationMinutes + minutesPerUnit*max(units, 1)
}
