package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrade/journal"
)

func newTestLedger(t *testing.T) (*Ledger, *journal.ActivityLog) {
	t.Helper()

	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return ts }
	n := 0
	ids := func(time.Time) string {
		n++
		return fmt.Sprintf("F%d", n)
	}

	log := journal.NewActivityLog(clock)
	return New(100000, log, WithClock(clock), WithIDs(ids)), log
}

func TestBuyOpensPosition(t *testing.T) {
	l, log := newTestLedger(t)

	fill, err := l.Buy("AAPL", 10, 189.50)
	require.NoError(t, err)

	assert.Equal(t, "F1", fill.ID)
	assert.Equal(t, SideBuy, fill.Side)
	assert.InDelta(t, 1895.00, fill.Total, 1e-9)
	assert.InDelta(t, 98105.00, fill.CashAfter, 1e-9)
	assert.InDelta(t, 98105.00, l.Cash(), 1e-9)

	pos, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 10, pos.Shares)
	assert.InDelta(t, 189.50, pos.AvgCost, 1e-9)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, journal.CategoryBuy, entries[0].Category)
	assert.Equal(t, "BUY 10 × AAPL @ $189.50 = $1895.00", entries[0].Message)
}

func TestBuyAveragesCost(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("XOM", 10, 100)
	require.NoError(t, err)
	fill, err := l.Buy("XOM", 10, 200)
	require.NoError(t, err)

	pos, ok := l.Position("XOM")
	require.True(t, ok)
	assert.Equal(t, 20, pos.Shares)
	assert.InDelta(t, 150.0, pos.AvgCost, 1e-9)
	assert.InDelta(t, 150.0, fill.AvgCost, 1e-9)
	assert.InDelta(t, 97000.0, l.Cash(), 1e-9)
}

func TestBuyInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l, log := newTestLedger(t)

	_, err := l.Buy("NVDA", 1000, 875.30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	assert.InDelta(t, 100000.0, l.Cash(), 1e-9)
	assert.Empty(t, l.Positions())

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, journal.CategoryInfo, entries[0].Category)
	assert.Equal(t, "Insufficient funds for 1000 × NVDA", entries[0].Message)
}

func TestBuyExactCashAllowed(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("KO", 1000, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, l.Cash(), 1e-9)
}

func TestInvalidQuantity(t *testing.T) {
	l, log := newTestLedger(t)

	for _, qty := range []int{0, -5} {
		_, err := l.Buy("AAPL", qty, 100)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
		_, err = l.Sell("AAPL", qty, 100)
		assert.True(t, errors.Is(err, ErrInvalidQuantity))
	}
	assert.Equal(t, 0, log.Len())
}

func TestInvalidPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{"zero", 0},
		{"negative", -50},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, log := newTestLedger(t)
			_, err := l.Buy("AAPL", 10, 100)
			require.NoError(t, err)
			before := log.Len()

			_, err = l.Buy("AAPL", 1, tt.price)
			assert.True(t, errors.Is(err, ErrInvalidPrice))
			_, err = l.Sell("AAPL", 1, tt.price)
			assert.True(t, errors.Is(err, ErrInvalidPrice))

			assert.InDelta(t, 99000.0, l.Cash(), 1e-9)
			pos, ok := l.Position("AAPL")
			require.True(t, ok)
			assert.Equal(t, 10, pos.Shares)
			assert.InDelta(t, 100.0, pos.AvgCost, 1e-9)
			assert.Equal(t, before, log.Len())
		})
	}
}

func TestBuyChecksUnroundedCost(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		price   float64
		wantErr error
		cash    float64
	}{
		{"sub-cent overdraft rejected", 1000, 100.000004, ErrInsufficientFunds, 100000},
		{"exact cash allowed", 1000, 100, nil, 0},
		{"sub-cent under cash rounds to full debit", 3, 33333.333333, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t)

			_, err := l.Buy("X", tt.qty, tt.price)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				_, held := l.Position("X")
				assert.False(t, held)
			} else {
				require.NoError(t, err)
			}
			assert.InDelta(t, tt.cash, l.Cash(), 1e-9)
		})
	}
}

func TestSellWithoutPosition(t *testing.T) {
	l, log := newTestLedger(t)

	_, err := l.Sell("MSFT", 1, 415.20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientShares))
	assert.InDelta(t, 100000.0, l.Cash(), 1e-9)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Insufficient shares to sell 1 × MSFT", entries[0].Message)
}

func TestSellMoreThanHeld(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("JPM", 5, 198.70)
	require.NoError(t, err)
	cash := l.Cash()

	_, err = l.Sell("JPM", 6, 200)
	assert.True(t, errors.Is(err, ErrInsufficientShares))

	pos, ok := l.Position("JPM")
	require.True(t, ok)
	assert.Equal(t, 5, pos.Shares)
	assert.InDelta(t, cash, l.Cash(), 1e-9)
}

func TestPartialSellKeepsAvgCost(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("V", 10, 278.90)
	require.NoError(t, err)
	_, err = l.Sell("V", 4, 300)
	require.NoError(t, err)

	pos, ok := l.Position("V")
	require.True(t, ok)
	assert.Equal(t, 6, pos.Shares)
	assert.InDelta(t, 278.90, pos.AvgCost, 1e-9)
}

func TestRoundTripRemovesPosition(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("PG", 3, 165.40)
	require.NoError(t, err)
	_, err = l.Sell("PG", 3, 165.40)
	require.NoError(t, err)

	_, ok := l.Position("PG")
	assert.False(t, ok)
	assert.InDelta(t, 100000.0, l.Cash(), 1e-9)
}

func TestEndToEndBuySell(t *testing.T) {
	l, log := newTestLedger(t)

	_, err := l.Buy("AAPL", 10, 189.50)
	require.NoError(t, err)
	assert.InDelta(t, 98105.00, l.Cash(), 1e-9)

	fill, err := l.Sell("AAPL", 10, 195.00)
	require.NoError(t, err)
	assert.InDelta(t, 100055.00, l.Cash(), 1e-9)
	assert.InDelta(t, 5.50, fill.RealizedPerShare, 1e-9)
	assert.InDelta(t, 189.50, fill.AvgCost, 1e-9)
	assert.Empty(t, l.Positions())

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, journal.CategorySell, entries[0].Category)
	assert.Equal(t, "SELL 10 × AAPL @ $195.00 | PnL/share: +$5.50", entries[0].Message)
}

func TestSellAtLossMessage(t *testing.T) {
	l, log := newTestLedger(t)

	_, err := l.Buy("BAC", 4, 38.90)
	require.NoError(t, err)
	_, err = l.Sell("BAC", 4, 36.65)
	require.NoError(t, err)

	assert.Equal(t, "SELL 4 × BAC @ $36.65 | PnL/share: -$2.25", log.Entries()[0].Message)
}

func TestValuate(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Buy("AAPL", 10, 189.50)
	require.NoError(t, err)
	_, err = l.Buy("KO", 100, 61.80)
	require.NoError(t, err)

	v := l.Valuate(map[string]float64{"AAPL": 190.00, "KO": 62.00})
	assert.InDelta(t, 91925.00, v.Cash, 1e-9)
	assert.InDelta(t, 8100.00, v.PositionsValue, 1e-9)
	assert.InDelta(t, 100025.00, v.Total, 1e-9)
	assert.InDelta(t, 25.00, l.UnrealizedPnL(map[string]float64{"AAPL": 190.00, "KO": 62.00}), 1e-9)

	// Missing prices contribute nothing.
	v = l.Valuate(map[string]float64{"AAPL": 190.00})
	assert.InDelta(t, 1900.00, v.PositionsValue, 1e-9)
}

func TestValuateEmpty(t *testing.T) {
	l, _ := newTestLedger(t)

	v := l.Valuate(nil)
	assert.InDelta(t, 100000.0, v.Total, 1e-9)
	assert.InDelta(t, 0.0, l.UnrealizedPnL(nil), 1e-9)
}

func TestPositionPnL(t *testing.T) {
	l, _ := newTestLedger(t)

	_, ok := l.PositionPnL("AAPL", 200)
	assert.False(t, ok)

	_, err := l.Buy("AAPL", 10, 189.50)
	require.NoError(t, err)

	pnl, ok := l.PositionPnL("AAPL", 195.00)
	require.True(t, ok)
	assert.InDelta(t, 55.00, pnl, 1e-9)
}

func TestPositionsSorted(t *testing.T) {
	l, _ := newTestLedger(t)

	for _, sym := range []string{"MSFT", "AAPL", "KO"} {
		_, err := l.Buy(sym, 1, 10)
		require.NoError(t, err)
	}

	got := l.Positions()
	require.Len(t, got, 3)
	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "KO", got[1].Symbol)
	assert.Equal(t, "MSFT", got[2].Symbol)
}

func TestConcurrentOrdersKeepCashConsistent(t *testing.T) {
	l := New(100000, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Buy("AAPL", 1, 100); err == nil {
				_, _ = l.Sell("AAPL", 1, 100)
			}
		}()
	}
	wg.Wait()

	assert.InDelta(t, 100000.0, l.Cash(), 1e-9)
}

func TestFillRecord(t *testing.T) {
	l, _ := newTestLedger(t)

	fill, err := l.Buy("AAPL", 2, 100.25)
	require.NoError(t, err)

	rec := fill.Record()
	assert.Equal(t, "F1", rec.FillID)
	assert.Equal(t, "buy", rec.Side)
	assert.Equal(t, 2, rec.Quantity)
	assert.InDelta(t, 200.50, rec.Total, 1e-9)
}
