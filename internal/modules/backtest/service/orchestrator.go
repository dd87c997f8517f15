package service

import (
	"context"
	"fmt"
	"time"

	"pivot_bot/internal/helper"
	"pivot_bot/internal/metrics"
	"pivot_bot/internal/models"
	"pivot_bot/pkg/logger"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Evaluator - то, что оркестратор запускает на каждый инструмент (Engine в проде).
type Evaluator interface {
	Evaluate(ctx context.Context, instrumentKey string, prev, cur time.Time) (*models.InstrumentResult, error)
}

// Settings - неизменяемые параметры прогона, собираются из конфига один раз.
type Settings struct {
	ProviderURL string
	BatchSize   int
	BatchPause  time.Duration
	Universe    []string
}

// Describe - короткая строка для логов.
func (s Settings) Describe() string {
	return fmt.Sprintf("batch=%d pause=%s universe=%d", s.BatchSize, s.BatchPause, len(s.Universe))
}

// Orchestrator гоняет Evaluator по списку инструментов пачками фиксированного размера
// с паузой между пачками (лимит провайдера).
type Orchestrator struct {
	eval     Evaluator
	symbols  SymbolLookup
	settings Settings

	sleep func(ctx context.Context, d time.Duration)
}

func NewOrchestrator(eval Evaluator, symbols SymbolLookup, settings Settings) *Orchestrator {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 5
	}
	settings.Universe = append([]string(nil), settings.Universe...)
	return &Orchestrator{eval: eval, symbols: symbols, settings: settings, sleep: pause}
}

func (o *Orchestrator) Settings() Settings { return o.settings }

// Run: ошибки отдельных инструментов попадают в report.Errors, наружу выходит только
// ErrConfiguration / ErrInvalidDateRange. Пустой keys - вся вселенная из настроек.
func (o *Orchestrator) Run(ctx context.Context, keys []string, prev, cur time.Time) (*models.BatchReport, error) {
	if o.settings.ProviderURL == "" {
		return nil, models.ErrConfiguration
	}
	if err := helper.ValidateRange(prev, cur); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		keys = o.settings.Universe
	}

	report := &models.BatchReport{
		PreviousDate:     helper.FormatDate(prev),
		Date:             helper.FormatDate(cur),
		TotalInstruments: len(keys),
		Results:          []models.InstrumentResult{},
		Errors:           []models.InstrumentError{},
	}

	size := o.settings.BatchSize
	batches := (len(keys) + size - 1) / size
	for b := 0; b < batches; b++ {
		if b > 0 {
			o.sleep(ctx, o.settings.BatchPause)
		}
		start := b * size
		end := min(start+size, len(keys))

		began := time.Now()
		o.runBatch(ctx, keys[start:end], prev, cur, report)
		metrics.BatchDuration.Observe(time.Since(began).Seconds())

		logger.Info("batch %d/%d done: %d instruments (ok %d, failed %d so far)",
			b+1, batches, end-start, report.Succeeded, report.Failed)
	}
	return report, nil
}

type outcome struct {
	res *models.InstrumentResult
	err error
}

// runBatch - вся пачка параллельно; результаты пишутся по индексу, порядок ключей сохраняется.
func (o *Orchestrator) runBatch(ctx context.Context, keys []string, prev, cur time.Time, report *models.BatchReport) {
	out := make([]outcome, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(keys))
	for i, key := range keys {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					out[i] = outcome{err: errors.Errorf("panic: %v", p)}
				}
			}()
			// наружу уходит только отмена контекста, ошибка инструмента пачку не останавливает
			if err := gctx.Err(); err != nil {
				out[i] = outcome{err: err}
				return err
			}
			res, err := o.eval.Evaluate(gctx, key, prev, cur)
			out[i] = outcome{res: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("batch interrupted: %v", err)
	}

	for i, r := range out {
		key := keys[i]
		if r.err != nil || r.res == nil {
			msg := "no result"
			if r.err != nil {
				msg = r.err.Error()
			}
			report.Failed++
			report.Errors = append(report.Errors, models.InstrumentError{
				InstrumentKey: key,
				Symbol:        o.symbol(key),
				Message:       msg,
			})
			metrics.InstrumentsTotal.WithLabelValues("failed").Inc()
			continue
		}

		report.Succeeded++
		metrics.InstrumentsTotal.WithLabelValues("ok").Inc()
		if r.res.HasTrade() {
			report.Add(*r.res)
		}
	}
}

func (o *Orchestrator) symbol(key string) string {
	if o.symbols == nil {
		return models.UnknownSymbol
	}
	return o.symbols.Symbol(key)
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
