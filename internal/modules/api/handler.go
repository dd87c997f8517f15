package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pivot_bot/internal/helper"
	"pivot_bot/internal/models"
	"pivot_bot/internal/notify"
	"pivot_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"

	msgDateFormat = "Invalid date format. Please use DD-MM-YYYY format (example: 25-12-2023)"
	msgDateValue  = "Invalid date provided. Please check the date values"
	helloMessage  = "Hello from bot"
)

type Evaluator interface {
	Evaluate(ctx context.Context, instrumentKey string, prev, cur time.Time) (*models.InstrumentResult, error)
}

type Runner interface {
	Run(ctx context.Context, keys []string, prev, cur time.Time) (*models.BatchReport, error)
}

type Resolver interface {
	Key(symbol string) (string, bool)
}

// RunTracker - отметки о прогонах для /healthz.
type RunTracker interface {
	BeginRun()
	EndRun(t time.Time, failed bool)
}

type response struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type Handler struct {
	engine   Evaluator
	runner   Runner
	resolver Resolver
	notifier notify.Notifier
	tracker  RunTracker
	calendar *helper.Calendar
	loc      *time.Location
	ws       http.Handler

	notifyEmpty bool
	now         func() time.Time
}

type Options struct {
	Engine      Evaluator
	Runner      Runner
	Resolver    Resolver
	Notifier    notify.Notifier
	Tracker     RunTracker
	Calendar    *helper.Calendar
	Location    *time.Location
	WS          http.Handler
	NotifyEmpty bool
}

func NewHandler(o Options) *Handler {
	loc := o.Location
	if loc == nil {
		loc = helper.MarketLocation("")
	}
	return &Handler{
		engine:      o.Engine,
		runner:      o.Runner,
		resolver:    o.Resolver,
		notifier:    o.Notifier,
		tracker:     o.Tracker,
		calendar:    o.Calendar,
		loc:         loc,
		ws:          o.WS,
		notifyEmpty: o.NotifyEmpty,
		now:         time.Now,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.hello)
	mux.HandleFunc("GET /backtest/{key}/{date}", h.backtest)
	mux.HandleFunc("GET /backtest-all/{date}", h.backtestAll)
	mux.HandleFunc("GET /search", h.search)
	if h.ws != nil {
		mux.Handle("GET /ws/reports", h.ws)
	}
	return mux
}

func (h *Handler) hello(w http.ResponseWriter, r *http.Request) {
	if err := h.publish(r.Context(), helloMessage, nil); err != nil {
		h.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.ok(w, helloMessage)
}

// backtest - один инструмент: /backtest/NSE_EQ|INE002A01018/02-09-2025 (или торговый символ вместо ключа).
func (h *Handler) backtest(w http.ResponseWriter, r *http.Request) {
	prev, cur, ok := h.dates(w, r.PathValue("date"))
	if !ok {
		return
	}
	key := h.resolve(r.PathValue("key"))

	h.begin()
	res, err := h.engine.Evaluate(r.Context(), key, prev, cur)
	h.end(err)
	if err != nil {
		h.fail(w, statusFor(err), err.Error())
		return
	}

	if res.HasTrade() || h.notifyEmpty {
		_ = h.publish(r.Context(), notify.FormatResult(res), res)
	}
	h.ok(w, res)
}

// backtestAll - вся вселенная за дату, отчёт уходит в нотификаторы.
func (h *Handler) backtestAll(w http.ResponseWriter, r *http.Request) {
	prev, cur, ok := h.dates(w, r.PathValue("date"))
	if !ok {
		return
	}
	h.runAll(w, r, prev, cur)
}

// search - сегодняшний скан.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	cur := h.today()
	prev := h.calendar.PreviousTradingDay(cur)
	h.runAll(w, r, prev, cur)
}

func (h *Handler) runAll(w http.ResponseWriter, r *http.Request, prev, cur time.Time) {
	var keys []string
	if q := r.URL.Query().Get("instruments"); q != "" {
		for _, k := range strings.Split(q, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, h.resolve(k))
			}
		}
	}

	h.begin()
	report, err := h.runner.Run(r.Context(), keys, prev, cur)
	h.end(err)
	if err != nil {
		h.fail(w, statusFor(err), err.Error())
		return
	}

	if len(report.Results) > 0 || h.notifyEmpty {
		_ = h.publish(r.Context(), notify.FormatReport(report), report)
	}
	h.ok(w, report)
}

// dates: разбор и проверка даты до любых обращений к провайдеру.
func (h *Handler) dates(w http.ResponseWriter, raw string) (prev, cur time.Time, ok bool) {
	prev, cur, err := h.calendar.SessionDates(raw, h.loc)
	if err == nil {
		err = helper.ValidateRange(prev, cur)
	}
	switch {
	case err == nil:
		return prev, cur, true
	case errors.Is(err, helper.ErrDateFormat):
		h.fail(w, http.StatusBadRequest, msgDateFormat)
	case errors.Is(err, helper.ErrDateValue):
		h.fail(w, http.StatusBadRequest, msgDateValue)
	default:
		h.fail(w, http.StatusBadRequest, err.Error())
	}
	return time.Time{}, time.Time{}, false
}

func (h *Handler) today() time.Time {
	n := h.now().In(h.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, h.loc)
}

func (h *Handler) resolve(raw string) string {
	raw = strings.TrimSpace(raw)
	if h.resolver != nil && !strings.Contains(raw, "|") {
		if key, ok := h.resolver.Key(raw); ok {
			return key
		}
	}
	return raw
}

func (h *Handler) publish(ctx context.Context, message string, payload any) error {
	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Publish(ctx, message, payload); err != nil {
		logger.With(zap.Error(err)).Warn("notify failed")
		return err
	}
	return nil
}

func (h *Handler) begin() {
	if h.tracker != nil {
		h.tracker.BeginRun()
	}
}

func (h *Handler) end(err error) {
	if h.tracker != nil {
		h.tracker.EndRun(h.now(), err != nil)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidDate), errors.Is(err, models.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) ok(w http.ResponseWriter, data any) {
	h.write(w, http.StatusOK, response{Status: statusSuccess, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, code int, msg string) {
	h.write(w, code, response{Status: statusFailure, Message: msg})
}

func (h *Handler) write(w http.ResponseWriter, code int, body response) {
	raw, err := sonic.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(raw)
}
