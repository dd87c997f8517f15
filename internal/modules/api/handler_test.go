package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pivot_bot/internal/helper"
	"pivot_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeEngine struct {
	mu    sync.Mutex
	calls []string
	dates [][2]string
	res   *models.InstrumentResult
	err   error
}

func (f *fakeEngine) Evaluate(_ context.Context, key string, prev, cur time.Time) (*models.InstrumentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	f.dates = append(f.dates, [2]string{helper.FormatDate(prev), helper.FormatDate(cur)})
	return f.res, f.err
}

type fakeRunner struct {
	keys  []string
	dates [2]string
	calls int
	rep   *models.BatchReport
	err   error
}

func (f *fakeRunner) Run(_ context.Context, keys []string, prev, cur time.Time) (*models.BatchReport, error) {
	f.calls++
	f.keys = keys
	f.dates = [2]string{helper.FormatDate(prev), helper.FormatDate(cur)}
	return f.rep, f.err
}

type resolver map[string]string

func (r resolver) Key(s string) (string, bool) {
	k, ok := r[s]
	return k, ok
}

type published struct {
	mu       sync.Mutex
	messages []string
}

func (p *published) Publish(_ context.Context, message string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

type tracker struct{ begun, ended int }

func (t *tracker) BeginRun()              { t.begun++ }
func (t *tracker) EndRun(time.Time, bool) { t.ended++ }

type env struct {
	engine *fakeEngine
	runner *fakeRunner
	pub    *published
	track  *tracker
	srv    *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		engine: &fakeEngine{res: &models.InstrumentResult{InstrumentKey: "NSE_EQ|INE002A01018", Symbol: "RELIANCE", Trades: []models.Trade{}}},
		runner: &fakeRunner{rep: &models.BatchReport{Results: []models.InstrumentResult{}, Errors: []models.InstrumentError{}}},
		pub:    &published{},
		track:  &tracker{},
	}
	h := NewHandler(Options{
		Engine:   e.engine,
		Runner:   e.runner,
		Resolver: resolver{"RELIANCE": "NSE_EQ|INE002A01018"},
		Notifier: e.pub,
		Tracker:  e.track,
		Calendar: helper.NewCalendar([]string{"2025-10-02"}),
		Location: ist,
	})
	h.now = func() time.Time { return time.Date(2025, 9, 1, 10, 30, 0, 0, ist) }
	e.srv = httptest.NewServer(h.Routes())
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) get(t *testing.T, path string) (int, response) {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body response
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHello(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	code, body := e.get(t, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusSuccess, body.Status)
	assert.Equal(t, helloMessage, body.Data)
	assert.Equal(t, []string{helloMessage}, e.pub.messages)
}

func TestBacktestInvalidDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		msg  string
	}{
		{"bad format single", "/backtest/NSE_EQ%7CINE002A01018/2025-09-02", msgDateFormat},
		{"impossible date single", "/backtest/NSE_EQ%7CINE002A01018/31-02-2025", msgDateValue},
		{"bad format all", "/backtest-all/02.09.2025", msgDateFormat},
		{"impossible date all", "/backtest-all/00-09-2025", msgDateValue},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)
			code, body := e.get(t, tt.path)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, statusFailure, body.Status)
			assert.Equal(t, tt.msg, body.Message)
			assert.Empty(t, e.engine.calls)
			assert.Zero(t, e.runner.calls)
		})
	}
}

func TestBacktestSingle(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	code, body := e.get(t, "/backtest/NSE_EQ%7CINE002A01018/02-09-2025")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusSuccess, body.Status)
	assert.Equal(t, []string{"NSE_EQ|INE002A01018"}, e.engine.calls)
	assert.Equal(t, [2]string{"2025-09-01", "2025-09-02"}, e.engine.dates[0])
	// без сделки и без notify_empty - в канал ничего
	assert.Empty(t, e.pub.messages)
	assert.Equal(t, 1, e.track.begun)
	assert.Equal(t, 1, e.track.ended)
}

func TestBacktestSingleBySymbolMonday(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.engine.res.Trades = append(e.engine.res.Trades, models.Trade{Outcome: models.OutcomeStopHit})

	code, _ := e.get(t, "/backtest/RELIANCE/01-09-2025")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"NSE_EQ|INE002A01018"}, e.engine.calls)
	assert.Equal(t, [2]string{"2025-08-29", "2025-09-01"}, e.engine.dates[0])
	assert.Len(t, e.pub.messages, 1)
}

func TestBacktestSingleProviderFailure(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.engine.err = errors.Wrap(models.ErrDataUnavailable, "http 503")
	code, body := e.get(t, "/backtest/X/02-09-2025")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body.Message, "candle data unavailable")
}

func TestBacktestAll(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.runner.rep.Results = append(e.runner.rep.Results, models.InstrumentResult{Symbol: "TCS", Trades: []models.Trade{{Outcome: models.OutcomeTargetHit}}})

	code, body := e.get(t, "/backtest-all/03-10-2025?instruments=RELIANCE,NSE_EQ%7CX")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusSuccess, body.Status)
	// 2 октября - праздник
	assert.Equal(t, [2]string{"2025-10-01", "2025-10-03"}, e.runner.dates)
	assert.Equal(t, []string{"NSE_EQ|INE002A01018", "NSE_EQ|X"}, e.runner.keys)
	require.Len(t, e.pub.messages, 1)
	assert.Contains(t, e.pub.messages[0], "TCS")
}

func TestBacktestAllNotConfigured(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.runner.err = models.ErrConfiguration
	e.runner.rep = nil

	code, body := e.get(t, "/backtest-all/02-09-2025")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, models.ErrConfiguration.Error(), body.Message)
	assert.Empty(t, e.pub.messages)
}

func TestSearchUsesToday(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	code, _ := e.get(t, "/search")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, [2]string{"2025-08-29", "2025-09-01"}, e.runner.dates)
	assert.Nil(t, e.runner.keys)
}
