package service

import (
	"testing"

	"pivot_bot/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longSignal(t *testing.T) models.Signal {
	return models.Signal{
		Side:       models.SideLong,
		PivotLabel: models.PivotPP,
		PivotLevel: d("95"),
		Candle1:    bar(t, "09:20", "92", "97.5", "91.5", "97"),
		Candle2:    bar(t, "09:25", "97", "99.5", "96", "99"),
	}
}

func shortSignal(t *testing.T) models.Signal {
	return models.Signal{
		Side:       models.SideShort,
		PivotLabel: models.PivotPP,
		PivotLevel: d("95"),
		Candle1:    bar(t, "10:00", "98", "98.5", "92.5", "93"),
		Candle2:    bar(t, "10:05", "94", "94.5", "91.5", "92"),
	}
}

func TestRiskManager_LongCappedStop(t *testing.T) {
	t.Parallel()

	rm := DefaultRiskManager()
	stop, target, err := rm.Levels(longSignal(t), decimal.NewNullDecimal(d("99")))
	require.NoError(t, err)

	// структурный стоп 91.5 дальше 0.5% => режем до 99*0.995
	assert.True(t, d("98.505").Equal(stop), "stop %s", stop)
	assert.True(t, d("99.99").Equal(target), "target %s", target)
}

func TestRiskManager_LongStructuralStop(t *testing.T) {
	t.Parallel()

	sig := longSignal(t)
	sig.Candle1.Low = d("94.9")

	rm := DefaultRiskManager()
	stop, target, err := rm.Levels(sig, decimal.NewNullDecimal(d("95.2")))
	require.NoError(t, err)

	// min(94.9, 95*0.999=94.905) = 94.9; cap 95.2*0.995 = 94.724 => 94.9
	assert.True(t, d("94.9").Equal(stop), "stop %s", stop)
	assert.True(t, d("95.8").Equal(target), "target %s", target)
}

func TestRiskManager_ShortCappedStop(t *testing.T) {
	t.Parallel()

	rm := DefaultRiskManager()
	stop, target, err := rm.Levels(shortSignal(t), decimal.NewNullDecimal(d("92")))
	require.NoError(t, err)

	assert.True(t, d("92.46").Equal(stop), "stop %s", stop)
	assert.True(t, d("91.08").Equal(target), "target %s", target)
}

func TestRiskManager_ShortStructuralStop(t *testing.T) {
	t.Parallel()

	sig := shortSignal(t)
	sig.Candle1.High = d("95.05")

	rm := DefaultRiskManager()
	stop, target, err := rm.Levels(sig, decimal.NewNullDecimal(d("94.8")))
	require.NoError(t, err)

	// max(95.05, 95*1.001=95.095) = 95.095; cap 94.8*1.005 = 95.274 => 95.095
	assert.True(t, d("95.095").Equal(stop), "stop %s", stop)
	assert.True(t, d("94.21").Equal(target), "target %s", target)
}

func TestRiskManager_TargetIsRewardRiskMultiple(t *testing.T) {
	t.Parallel()

	rm := DefaultRiskManager()
	entries := []string{"95.05", "96", "97.35", "99", "101.1234"}

	for _, e := range entries {
		entry := d(e)
		stop, target, err := rm.Levels(longSignal(t), decimal.NewNullDecimal(entry))
		require.NoError(t, err)
		assert.True(t, stop.IsPositive())
		assert.True(t, stop.LessThan(entry))
		assert.True(t, entry.LessThan(target))
		diff := target.Sub(entry).Sub(two.Mul(entry.Sub(stop))).Abs()
		assert.True(t, diff.LessThanOrEqual(d("0.0001")), "entry %s: diff %s", e, diff)
	}

	for _, e := range []string{"94.9", "93", "92.1"} {
		entry := d(e)
		stop, target, err := rm.Levels(shortSignal(t), decimal.NewNullDecimal(entry))
		require.NoError(t, err)
		assert.True(t, target.LessThan(entry))
		assert.True(t, entry.LessThan(stop))
		diff := entry.Sub(target).Sub(two.Mul(stop.Sub(entry))).Abs()
		assert.True(t, diff.LessThanOrEqual(d("0.0001")), "entry %s: diff %s", e, diff)
	}
}

func TestRiskManager_NoEntry(t *testing.T) {
	t.Parallel()

	rm := DefaultRiskManager()
	_, _, err := rm.Levels(longSignal(t), decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrNoEntry)

	_, _, err = rm.Levels(longSignal(t), decimal.NewNullDecimal(decimal.Zero))
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestRiskManager_Degenerate(t *testing.T) {
	t.Parallel()

	sig := longSignal(t)
	sig.Candle1.Low = d("96")
	rm := DefaultRiskManager()
	// вход гэпом ниже структурного стопа
	_, _, err := rm.Levels(sig, decimal.NewNullDecimal(d("94")))
	assert.ErrorIs(t, err, ErrDegenerateRisk)
}

func TestEntryPrice(t *testing.T) {
	t.Parallel()

	candles := []models.Candle{
		bar(t, "09:20", "92", "97.5", "91.5", "97"),
		bar(t, "09:25", "97", "99.5", "96", "99"),
		bar(t, "09:30", "99.1", "99.6", "98.7", "99.2"),
	}

	px, idx := EntryPrice(candles, 1)
	require.True(t, px.Valid)
	assert.True(t, d("99.1").Equal(px.Decimal))
	assert.Equal(t, 2, idx)

	px, idx = EntryPrice(candles, 2)
	require.True(t, px.Valid)
	assert.True(t, d("99.2").Equal(px.Decimal))
	assert.Equal(t, 2, idx)

	px, idx = EntryPrice(candles, 5)
	assert.False(t, px.Valid)
	assert.Equal(t, -1, idx)
}
