package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestATMStrike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		price      float64
		strikeDist float64
		want       float64
	}{
		{"round_down_below_half", 21510, 50, 21500},
		{"round_up_above_half", 21480, 50, 21500},
		{"exact_half_rounds_down", 21525, 50, 21500},
		{"on_grid", 21500, 50, 21500},
		{"wide_grid", 47930, 100, 47900},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, ATMStrike(tt.price, tt.strikeDist), 1e-9)
		})
	}
}

func TestCallPutSymbol(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NIFTY25JAN2421500CE", CallSymbol("NIFTY", "25JAN24", 21510, 50, 0))
	assert.Equal(t, "NIFTY25JAN2421600CE", CallSymbol("NIFTY", "25JAN24", 21510, 50, 2))
	assert.Equal(t, "NIFTY25JAN2421500PE", PutSymbol("NIFTY", "25JAN24", 21510, 50, 0))
	assert.Equal(t, "NIFTY25JAN2421400PE", PutSymbol("NIFTY", "25JAN24", 21510, 50, 2))
}

func TestSymbolExpiry(t *testing.T) {
	t.Parallel()

	got, err := SymbolExpiry("NIFTY25JAN2421500CE")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 25, 15, 30, 0, 0, Exchange), got)

	_, err = SymbolExpiry("RELIANCE")
	assert.Error(t, err)

	_, err = SymbolExpiry("NIFTY99XXX24CE")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("BUY")
	assert.NoError(t, err)
	assert.Equal(t, Long, d)

	d, err = ParseDirection("SELL")
	assert.NoError(t, err)
	assert.Equal(t, Short, d)

	_, err = ParseDirection("HOLD")
	assert.Error(t, err)
}
