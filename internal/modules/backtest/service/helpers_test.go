package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pivot_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02", s, ist)
	require.NoError(t, err)
	return tm
}

func bar(t *testing.T, clock, o, h, l, c string) models.Candle {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04", "2025-09-02 "+clock, ist)
	require.NoError(t, err)
	return models.Candle{Time: tm, Open: d(o), High: d(h), Low: d(l), Close: d(c), Volume: d("1000")}
}

// fakeSource хранит свечи по ключу в хронологическом порядке и отдаёт их newest-first, как провайдер.
type fakeSource struct {
	mu       sync.Mutex
	daily    map[string][]models.Candle
	intraday map[string][]models.Candle
	fail     map[string]error
	calls    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		daily:    map[string][]models.Candle{},
		intraday: map[string][]models.Candle{},
		fail:     map[string]error{},
	}
}

func (f *fakeSource) DailyCandles(_ context.Context, key string, _ time.Time) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	return models.Reversed(f.daily[key]), nil
}

func (f *fakeSource) IntradayCandles(_ context.Context, key string, _ time.Time) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return models.Reversed(f.intraday[key]), nil
}

type symbols map[string]string

func (s symbols) Symbol(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return models.UnknownSymbol
}

var errUnavailable = errors.Wrap(models.ErrDataUnavailable, "http 503")

// pivotDay - дневная свеча H=100 L=90 C=95: PP=95 R1=100 S1=90 R2=105 S2=85 R3=110 S3=80.
func pivotDay() []models.Candle {
	return []models.Candle{{High: d("100"), Low: d("90"), Close: d("95"), Open: d("92")}}
}

// longSession - LONG от PP на 9:20/9:25, вход 99.2 в 9:30, цель 100.192 берётся в 9:35.
func longSession(t *testing.T) []models.Candle {
	return []models.Candle{
		bar(t, "09:15", "93", "93.5", "92.8", "93.2"),
		bar(t, "09:20", "92", "97.5", "91.5", "97"),
		bar(t, "09:25", "97", "99.5", "96", "99"),
		bar(t, "09:30", "99.2", "99.4", "98.8", "99.1"),
		bar(t, "09:35", "99.1", "100.3", "99", "100.2"),
		bar(t, "09:40", "100.2", "100.4", "97", "97.5"),
	}
}

// flatSession - без пересечений уровней.
func flatSession(t *testing.T) []models.Candle {
	return []models.Candle{
		bar(t, "09:20", "96", "96.5", "95.5", "96.2"),
		bar(t, "09:25", "96.2", "96.8", "96", "96.6"),
		bar(t, "09:30", "96.6", "97", "96.1", "96.4"),
	}
}
