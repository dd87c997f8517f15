package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"pivot_bot/internal/helper"
	backtest "pivot_bot/internal/modules/backtest/service"
	"pivot_bot/internal/modules/config"
	health "pivot_bot/internal/modules/health/service"
	instruments "pivot_bot/internal/modules/instruments/service"
	"pivot_bot/internal/notify"
	"pivot_bot/pkg/logger"

	"go.uber.org/fx"
)

// NewNotifier: лог всегда, websocket-хаб всегда, Telegram при наличии токена и чата.
func NewNotifier(cfg *config.Config, hub *notify.Hub) (notify.Notifier, error) {
	multi := notify.Multi{notify.NewStdout(), hub}
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Warn("telegram not configured, reports go to log and /ws/reports only")
		return multi, nil
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Backtest.NotifyJSON)
	if err != nil {
		return nil, err
	}
	return append(multi, tg), nil
}

func NewHub(lc fx.Lifecycle) *notify.Hub {
	hub := notify.NewHub()
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
	return hub
}

func NewAPIHandler(
	cfg *config.Config,
	engine *backtest.Engine,
	orch *backtest.Orchestrator,
	lookup instruments.Lookup,
	notifier notify.Notifier,
	hub *notify.Hub,
	state *health.State,
) *Handler {
	return NewHandler(Options{
		Engine:      engine,
		Runner:      orch,
		Resolver:    lookup,
		Notifier:    notifier,
		Tracker:     state,
		Calendar:    helper.NewCalendar(cfg.Holidays),
		Location:    helper.MarketLocation(cfg.MarketData.Timezone),
		WS:          hub,
		NotifyEmpty: cfg.Backtest.NotifyEmpty,
	})
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, h *Handler) {
	addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("api server: %v", err)
				}
			}()
			logger.Info("api server on %s", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			NewHub,
			NewNotifier,
			NewAPIHandler,
		),
		fx.Invoke(RunHTTP),
	)
}
