package service

import (
	"path/filepath"
	"testing"

	"pivot_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileFiltersSegment(t *testing.T) {
	t.Parallel()

	idx, err := LoadFile("testdata/instruments.json", "NSE_EQ")
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	assert.Equal(t, "RELIANCE", idx.Symbol("NSE_EQ|INE002A01018"))
	assert.Equal(t, "TCS", idx.Symbol("NSE_EQ|INE467B01029"))
	assert.Equal(t, models.UnknownSymbol, idx.Symbol("NSE_FO|35001"))
	assert.Equal(t, models.UnknownSymbol, idx.Symbol(""))

	key, ok := idx.Key("reliance")
	require.True(t, ok)
	assert.Equal(t, "NSE_EQ|INE002A01018", key)

	_, ok = idx.Key("NIFTY25SEPFUT")
	assert.False(t, ok)

	assert.Equal(t, []string{"NSE_EQ|INE002A01018", "NSE_EQ|INE467B01029"}, Keys(idx.All()))
}

func TestIndexDuplicatesAndCopy(t *testing.T) {
	t.Parallel()

	idx := NewIndex([]models.Instrument{
		{InstrumentKey: "A", TradingSymbol: "AAA"},
		{InstrumentKey: "A", TradingSymbol: "DUP"},
		{InstrumentKey: "", TradingSymbol: "EMPTY"},
		{InstrumentKey: "B"},
	})
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, "AAA", idx.Symbol("A"))
	assert.Equal(t, models.UnknownSymbol, idx.Symbol("B"))

	all := idx.All()
	all[0].TradingSymbol = "changed"
	assert.NotEqual(t, "changed", idx.All()[0].TradingSymbol)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	list, err := ReadFile("testdata/instruments.json")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "NSE_EQ.json")
	require.NoError(t, WriteFile(out, FilterSegment(list, "NSE_EQ")))

	back, err := ReadFile(out)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "NSE_EQ", back[0].Segment)
	assert.Equal(t, "RELIANCE INDUSTRIES LTD", back[0].Name)
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile("testdata/nope.json")
	assert.Error(t, err)
}
