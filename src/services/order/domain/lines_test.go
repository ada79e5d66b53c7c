package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLines(t *testing.T) {
	lines := []OrderLine{{ItemKey: "A01", Quantity: 2}, {ItemKey: "B01", Quantity: 1}}

	assert.Equal(t, "A01:2|B01:1", FormatLines(lines))
	assert.Equal(t, "", FormatLines(nil))
}

func TestParseLines_RoundTrip(t *testing.T) {
	inputs := [][]OrderLine{
		{{ItemKey: "A01", Quantity: 2}, {ItemKey: "B01", Quantity: 1}},
		{{ItemKey: "B01", Quantity: 1}, {ItemKey: "A01", Quantity: 2}, {ItemKey: "A01", Quantity: 5}},
		{{ItemKey: "C-7", Quantity: 120}},
	}

	for _, lines := range inputs {
		parsed, err := ParseLines(FormatLines(lines))
		require.NoError(t, err)
		assert.Equal(t, lines, parsed)
	}
}

func TestParseLines_Malformed(t *testing.T) {
	for _, value := range []string{"A01", "A01:x", ":3", "A01:2|"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseLines(value)
			assert.ErrorIs(t, err, ErrMalformedOrderLine)
		})
	}
}

func TestNormalizeLines_DropsNonPositive(t *testing.T) {
	lines := normalizeLines([]RawItem{{Key: "A01", Quantity: 0}, {Key: "B01", Quantity: 2}, {Key: "C01", Quantity: -1}, {Key: "A01", Quantity: 1}})

	assert.Equal(t, []OrderLine{{ItemKey: "B01", Quantity: 2}, {ItemKey: "A01", Quantity: 1}}, lines)
}
