package strategy

import (
	"time"

	"pivot_bot/internal/modules/config"
	"pivot_bot/internal/modules/strategy/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

func NewWindow(cfg *config.Config) (service.Window, error) {
	interval := time.Duration(cfg.MarketData.Interval) * time.Minute
	w, err := service.NewWindow(cfg.Backtest.DetectFrom, cfg.Backtest.DetectTo, cfg.Backtest.Cutoff, interval)
	if err != nil {
		return service.Window{}, errors.Wrap(err, "session window")
	}
	return w, nil
}

func NewRiskManager(cfg *config.Config) service.RiskManager {
	return service.NewRiskManager(cfg.Backtest.StopBuffer, cfg.Backtest.MaxStop, cfg.Backtest.RewardRisk)
}

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(NewWindow, NewRiskManager),
	)
}
