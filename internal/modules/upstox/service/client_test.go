package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"pivot_bot/internal/models"
	"pivot_bot/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func newTestClient(base string) *Client {
	cfg := &config.Config{}
	cfg.MarketData = config.MarketData{
		BaseURL:        base,
		APIKey:         "secret",
		UserAgent:      "intraday-bot/1.0.0",
		Timeout:        2 * time.Second,
		Timeframe:      "minutes",
		Interval:       5,
		DailyTimeframe: "days",
		Timezone:       "Asia/Kolkata",
	}
	return NewClient(cfg)
}

func TestIntradayCandles(t *testing.T) {
	t.Parallel()

	fixture, err := os.ReadFile("testdata/intraday.json")
	require.NoError(t, err)

	var gotPath, gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL + "/v3/historical-candle/")
	day := time.Date(2025, 9, 2, 0, 0, 0, 0, ist)

	candles, err := c.IntradayCandles(context.Background(), "NSE_EQ|INE002A01018", day)
	require.NoError(t, err)

	assert.Equal(t, "/v3/historical-candle/NSE_EQ%7CINE002A01018/minutes/5/2025-09-02/2025-09-02", gotPath)
	assert.Equal(t, "intraday-bot/1.0.0", gotUA)
	assert.Equal(t, "Bearer secret", gotAuth)

	require.Len(t, candles, 3)
	// порядок провайдера сохраняется: newest-first
	assert.Equal(t, "9:25 AM", candles[0].Label())
	assert.Equal(t, "9:15 AM", candles[2].Label())
	assert.Equal(t, "101.2", candles[0].Open.String())
	assert.Equal(t, "99.6", candles[2].Low.String())
	assert.Equal(t, "53120", candles[2].Volume.String())
}

func TestDailyCandlesPath(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"status":"success","data":{"candles":[["2025-09-01T00:00:00+05:30",100,110,90,95,1000,0]]}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	candles, err := c.DailyCandles(context.Background(), "NSE_EQ|X", time.Date(2025, 9, 1, 0, 0, 0, 0, ist))
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, "/NSE_EQ%7CX/days/1/2025-09-01/2025-09-01", gotPath)
	assert.Equal(t, "110", candles[0].High.String())
}

func TestCandlesUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"status":"error"}`},
		{"not success", http.StatusOK, `{"status":"error","errors":[{"message":"invalid token"}]}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"short row", http.StatusOK, `{"status":"success","data":{"candles":[["2025-09-02T09:15:00+05:30",1,2]]}}`},
		{"null low", http.StatusOK, `{"status":"success","data":{"candles":[["2025-09-02T09:20:00+05:30",97,99.5,null,99,1000,0]]}}`},
		{"null open", http.StatusOK, `{"status":"success","data":{"candles":[["2025-09-02T09:20:00+05:30",null,99.5,96,99,1000,0]]}}`},
		{"bad timestamp", http.StatusOK, `{"status":"success","data":{"candles":[["09:15",1,2,3,4,5,0]]}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).IntradayCandles(context.Background(), "K", time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrDataUnavailable)
		})
	}
}

func TestCandlesTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv.URL)
	c.timeout = 50 * time.Millisecond

	_, err := c.IntradayCandles(context.Background(), "K", time.Now())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCandlesNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := newTestClient("").IntradayCandles(context.Background(), "K", time.Now())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestCandlesNullVolumeAccepted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"candles":[["2025-09-02T09:20:00+05:30",97,99.5,96,99,null,null]]}}`))
	}))
	defer srv.Close()

	candles, err := newTestClient(srv.URL).IntradayCandles(context.Background(), "K", time.Now())
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, "96", candles[0].Low.String())
	assert.True(t, candles[0].Volume.IsZero())
}
