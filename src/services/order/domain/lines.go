package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	lineSeparator     = "|"
	quantitySeparator = ":"
)

// FormatLines serializes lines as KEY:QTY pairs joined by "|".
func FormatLines(lines []OrderLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.ItemKey+quantitySeparator+strconv.Itoa(line.Quantity))
	}
	return strings.Join(parts, lineSeparator)
}

// ParseLines is the inverse of FormatLines. An empty string yields no lines.
func ParseLines(value string) ([]OrderLine, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, lineSeparator)
	lines := make([]OrderLine, 0, len(parts))
	for _, part := range parts {
		idx := strings.LastIndex(part, quantitySeparator)
		if idx <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOrderLine, part)
		}
		quantity, err := strconv.Atoi(part[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedOrderLine, part, err)
		}
		lines = append(lines, OrderLine{ItemKey: part[:idx], Quantity: quantity})
	}
	return lines, nil
}

// normalizeLines drops non-positive quantities, keeping input order.
func normalizeLines(items []RawItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		lines = append(lines, OrderLine{ItemKey: item.Key, Quantity: item.Quantity})
	}
	return lines
}
