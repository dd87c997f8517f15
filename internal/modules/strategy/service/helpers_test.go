package service

import (
	"testing"
	"time"

	"pivot_bot/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// bar - свеча в 5-минутной сетке: hh:mm по IST.
func bar(t *testing.T, clock string, o, h, l, c string) models.Candle {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04", "2025-09-02 "+clock, ist)
	require.NoError(t, err)
	return models.Candle{Time: tm, Open: d(o), High: d(h), Low: d(l), Close: d(c)}
}

// levels100 - пивоты от H=100 L=90 C=95: PP=95 R1=100 S1=90 R2=105 S2=85 R3=110 S3=80.
func levels100(t *testing.T) models.PivotLevels {
	t.Helper()
	lv, ok := CalcPivots([]models.Candle{{High: d("100"), Low: d("90"), Close: d("95")}})
	require.True(t, ok)
	return lv
}
