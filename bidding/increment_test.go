package bidding

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementFor(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{0, 5},
		{1, 5},
		{99, 5},
		{100, 10},
		{499, 10},
		{500, 25},
		{999, 25},
		{1000, 50},
		{4999, 50},
		{5000, 100},
		{9999, 100},
		{10000, 250},
		{24999, 250},
		{25000, 500},
		{49999, 500},
		{50000, 1000},
		{99999, 1000},
		{100000, 2500},
		{249999, 2500},
		{250000, 5000},
		{499999, 5000},
		{500000, 10000},
		{10000000, 10000},
		{-1, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("amount=%d", tt.amount), func(t *testing.T) {
			assert.Equal(t, tt.want, IncrementFor(tt.amount))
		})
	}
}

func TestMinimumNextBid(t *testing.T) {
	tests := []struct {
		name         string
		currentPrice int64
		reservePrice int64
		want         int64
	}{
		{"no bids and no reserve", 0, 0, 1},
		{"no bids with reserve", 0, 100, 100},
		{"negative current falls back to reserve", -5, 100, 100},
		{"just below tier boundary", 99, 0, 104},
		{"on tier boundary", 100, 0, 110},
		{"mid tier", 750, 0, 775},
		{"high tier", 500000, 0, 510000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinimumNextBid(tt.currentPrice, tt.reservePrice))
		})
	}
}

// 加價表必須嚴格遞增：價格越高，下一口價只會更高
func TestMinimumNextBid_Monotonic(t *testing.T) {
	prev := MinimumNextBid(1, 0)
	for price := int64(2); price <= 600000; price += 7 {
		next := MinimumNextBid(price, 0)
		assert.GreaterOrEqual(t, next, prev, "price=%d", price)
		assert.Greater(t, next, price, "minimum next must exceed current price, price=%d", price)
		prev = next
	}
}
