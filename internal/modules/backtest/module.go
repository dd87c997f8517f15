package backtest

import (
	"pivot_bot/internal/modules/backtest/service"
	"pivot_bot/internal/modules/config"
	instruments "pivot_bot/internal/modules/instruments/service"
	strategy "pivot_bot/internal/modules/strategy/service"
	upstox "pivot_bot/internal/modules/upstox/service"
	"pivot_bot/pkg/logger"

	"go.uber.org/fx"
)

func NewEngine(client *upstox.Client, lookup instruments.Lookup, window strategy.Window, risk strategy.RiskManager) *service.Engine {
	return service.NewEngine(client, lookup, window, risk)
}

// NewSettings: вселенная из конфига, иначе весь справочник.
func NewSettings(cfg *config.Config, lookup instruments.Lookup) service.Settings {
	universe := cfg.Backtest.Universe
	if len(universe) == 0 {
		universe = instruments.Keys(lookup.All())
	}
	return service.Settings{
		ProviderURL: cfg.MarketData.BaseURL,
		BatchSize:   cfg.Backtest.BatchSize,
		BatchPause:  cfg.Backtest.BatchPause,
		Universe:    universe,
	}
}

func NewOrchestrator(engine *service.Engine, lookup instruments.Lookup, settings service.Settings) *service.Orchestrator {
	logger.Info("backtest orchestrator: %s", settings.Describe())
	return service.NewOrchestrator(engine, lookup, settings)
}

func Module() fx.Option {
	return fx.Module("backtest",
		fx.Provide(
			NewEngine,
			NewSettings,
			NewOrchestrator,
		),
	)
}
