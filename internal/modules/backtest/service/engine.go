package service

import (
	"context"
	"time"

	"pivot_bot/internal/helper"
	"pivot_bot/internal/metrics"
	"pivot_bot/internal/models"
	strategy "pivot_bot/internal/modules/strategy/service"
	"pivot_bot/pkg/logger"
	"pivot_bot/pkg/tracing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CandleSource - провайдер свечей. Оба метода отдают newest-first.
type CandleSource interface {
	DailyCandles(ctx context.Context, instrumentKey string, date time.Time) ([]models.Candle, error)
	IntradayCandles(ctx context.Context, instrumentKey string, date time.Time) ([]models.Candle, error)
}

type SymbolLookup interface {
	Symbol(instrumentKey string) string
}

// Engine - полный прогон стратегии для одного инструмента за один день.
type Engine struct {
	source  CandleSource
	symbols SymbolLookup
	window  strategy.Window
	risk    strategy.RiskManager
}

func NewEngine(source CandleSource, symbols SymbolLookup, window strategy.Window, risk strategy.RiskManager) *Engine {
	return &Engine{source: source, symbols: symbols, window: window, risk: risk}
}

func (e *Engine) symbol(key string) string {
	if e.symbols == nil {
		return models.UnknownSymbol
	}
	return e.symbols.Symbol(key)
}

// Evaluate: пивоты по дню prev, поиск сигнала и симуляция сделки по дню cur.
// Отсутствие сигнала - не ошибка, а результат без сделок.
func (e *Engine) Evaluate(ctx context.Context, instrumentKey string, prev, cur time.Time) (res *models.InstrumentResult, err error) {
	span, ctx := tracing.StartSpan(ctx, "backtest.evaluate", map[string]any{
		"instrument": instrumentKey,
		"date":       helper.FormatDate(cur),
	})
	defer func() { tracing.Finish(span, err) }()

	log := logger.With(zap.String("instrument", instrumentKey), zap.String("date", helper.FormatDate(cur)))

	daily, err := e.source.DailyCandles(ctx, instrumentKey, prev)
	if err != nil {
		return nil, errors.WithMessagef(err, "pivot candles %s", helper.FormatDate(prev))
	}
	levels, ok := strategy.CalcPivots(daily)
	if !ok {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "no daily candle for %s", helper.FormatDate(prev))
	}

	intraday, err := e.source.IntradayCandles(ctx, instrumentKey, cur)
	if err != nil {
		return nil, errors.WithMessagef(err, "intraday candles %s", helper.FormatDate(cur))
	}
	if len(intraday) == 0 {
		return nil, errors.Wrapf(models.ErrDataUnavailable, "no intraday candles for %s", helper.FormatDate(cur))
	}
	candles := models.Reversed(intraday)

	res = &models.InstrumentResult{
		InstrumentKey: instrumentKey,
		Symbol:        e.symbol(instrumentKey),
		Date:          helper.FormatDate(cur),
		Pivots:        levels,
		Trades:        []models.Trade{},
	}

	session := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if e.window.InDetection(c.Label()) {
			session = append(session, c)
		}
	}

	sig, ok := strategy.Detect(session, levels)
	if !ok {
		log.Debug("no signal")
		return res, nil
	}
	metrics.SignalsTotal.WithLabelValues(string(sig.Side), string(sig.PivotLabel)).Inc()

	confirmIdx := indexOf(candles, sig.Candle2.Time)
	entry, entryIdx := strategy.EntryPrice(candles, confirmIdx)

	stop, target, err := e.risk.Levels(*sig, entry)
	if err != nil {
		// гэп через уровень или нет цены входа: сигнал есть, сделки нет
		log.Info("signal skipped", zap.String("pivot", string(sig.PivotLabel)), zap.Error(err))
		return res, nil
	}

	entryTime := candles[confirmIdx].Label()
	if entryIdx > confirmIdx {
		entryTime = candles[entryIdx].Label()
	} else if next, nerr := e.window.NextInterval(entryTime); nerr == nil {
		entryTime = next
	}

	outcome, exitIdx := strategy.Simulate(sig.Side, stop, target, candles, confirmIdx+1, e.window)
	trade := models.Trade{
		Signal:     *sig,
		EntryTime:  entryTime,
		EntryPrice: entry.Decimal,
		StopLoss:   stop,
		Target:     target,
		Outcome:    outcome,
	}
	if exitIdx >= 0 {
		trade.ExitTime = candles[exitIdx].Label()
	}
	res.Trades = append(res.Trades, trade)

	metrics.OutcomesTotal.WithLabelValues(string(outcome)).Inc()
	log.Info("trade simulated",
		zap.String("side", string(sig.Side)),
		zap.String("pivot", string(sig.PivotLabel)),
		zap.String("entry", entry.Decimal.String()),
		zap.String("outcome", string(outcome)))
	return res, nil
}

func indexOf(candles []models.Candle, t time.Time) int {
	for i, c := range candles {
		if c.Time.Equal(t) {
			return i
		}
	}
	return -1
}
