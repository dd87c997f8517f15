package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pivot_bot/internal/helper"
	"pivot_bot/internal/metrics"
	"pivot_bot/internal/models"
	"pivot_bot/internal/modules/config"
	"pivot_bot/pkg/logger"
	"pivot_bot/pkg/tracing"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const statusSuccess = "success"

// json.Number для цен: без потерь на float64.
var decoder = sonic.Config{UseNumber: true}.Froze()

type envelope struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]any `json:"candles"`
	} `json:"data"`
}

// Client - REST клиент исторических свечей.
// URL: {base}/{instrument_key}/{timeframe}/{interval}/{to}/{from}, строки [ts, o, h, l, c, vol, oi], newest-first.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	timeout   time.Duration

	timeframe      string
	interval       int
	dailyTimeframe string

	loc  *time.Location
	http *http.Client
}

func NewClient(cfg *config.Config) *Client {
	md := cfg.MarketData
	return &Client{
		baseURL:        strings.TrimRight(md.BaseURL, "/"),
		apiKey:         md.APIKey,
		userAgent:      md.UserAgent,
		timeout:        md.Timeout,
		timeframe:      md.Timeframe,
		interval:       md.Interval,
		dailyTimeframe: md.DailyTimeframe,
		loc:            helper.MarketLocation(md.Timezone),
		http:           &http.Client{},
	}
}

// DailyCandles - дневные свечи за date (newest-first, как у провайдера).
func (c *Client) DailyCandles(ctx context.Context, instrumentKey string, date time.Time) ([]models.Candle, error) {
	return c.Candles(ctx, instrumentKey, c.dailyTimeframe, 1, date, date)
}

// IntradayCandles - внутридневные свечи за date (newest-first).
func (c *Client) IntradayCandles(ctx context.Context, instrumentKey string, date time.Time) ([]models.Candle, error) {
	return c.Candles(ctx, instrumentKey, c.timeframe, c.interval, date, date)
}

// Candles - любой сбой (транспорт, статус, формат) отдаётся как models.ErrDataUnavailable.
func (c *Client) Candles(ctx context.Context, instrumentKey, timeframe string, interval int, from, to time.Time) (out []models.Candle, err error) {
	if c.baseURL == "" {
		return nil, models.ErrConfiguration
	}

	span, ctx := tracing.StartSpan(ctx, "upstox.candles", map[string]any{
		"instrument": instrumentKey,
		"timeframe":  timeframe,
	})
	defer func() { tracing.Finish(span, err) }()

	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ProviderRequests.WithLabelValues(timeframe, status).Inc()
		metrics.ProviderLatency.WithLabelValues(timeframe).Observe(time.Since(started).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/%s/%s/%d/%s/%s",
		c.baseURL, url.PathEscape(instrumentKey), timeframe, interval,
		helper.FormatDate(to), helper.FormatDate(from))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		logger.With(zap.String("instrument", instrumentKey), zap.String("timeframe", timeframe)).
			Warn("candles fetch failed", zap.Error(err))
		return nil, errors.Wrapf(models.ErrDataUnavailable, "%s %s: %v", instrumentKey, timeframe, err)
	}

	out, err = c.parse(body)
	if err != nil {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "%s %s: %v", instrumentKey, timeframe, err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func (c *Client) parse(body []byte) ([]models.Candle, error) {
	var env envelope
	if err := decoder.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if env.Status != statusSuccess {
		return nil, errors.Errorf("status %q", env.Status)
	}

	out := make([]models.Candle, 0, len(env.Data.Candles))
	for i, row := range env.Data.Candles {
		cd, err := c.row(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out = append(out, cd)
	}
	return out, nil
}

func (c *Client) row(row []any) (models.Candle, error) {
	if len(row) < 5 {
		return models.Candle{}, errors.Errorf("expected at least 5 fields, got %d", len(row))
	}
	ts, ok := row[0].(string)
	if !ok {
		return models.Candle{}, errors.New("timestamp is not a string")
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return models.Candle{}, errors.Wrap(err, "timestamp")
	}

	var px [5]decimal.Decimal
	for i := 1; i < len(row) && i <= 5; i++ {
		// пустой объём допустим, пустая цена - битая строка
		if row[i] == nil && i < 5 {
			return models.Candle{}, errors.Errorf("field %d is null", i)
		}
		if px[i-1], err = toDecimal(row[i]); err != nil {
			return models.Candle{}, errors.Wrapf(err, "field %d", i)
		}
	}

	return models.Candle{
		Time:   t.In(c.loc),
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: px[4],
	}, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case fmt.Stringer: // json.Number
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	case nil:
		return decimal.Zero, nil
	}
	return decimal.Zero, errors.Errorf("unexpected %T", v)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
