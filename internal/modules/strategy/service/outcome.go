package service

import (
	"pivot_bot/internal/models"

	"github.com/shopspring/decimal"
)

// Simulate идёт по свечам начиная со start и классифицирует сделку.
// Свеча на отсечке или позже => UNDECIDED, дальше не смотрим.
// На одной свече стоп проверяется раньше цели.
// Второе значение - индекс свечи, закрывшей сделку, или -1.
func Simulate(side models.Side, stop, target decimal.Decimal, candles []models.Candle, start int, w Window) (models.Outcome, int) {
	if start < 0 {
		start = 0
	}

	for i := start; i < len(candles); i++ {
		c := candles[i]
		if !w.BeforeCutoff(c.Label()) {
			return models.OutcomeUndecided, -1
		}

		switch side {
		case models.SideLong:
			if c.Low.LessThanOrEqual(stop) {
				return models.OutcomeStopHit, i
			}
			if c.High.GreaterThanOrEqual(target) {
				return models.OutcomeTargetHit, i
			}
		case models.SideShort:
			if c.High.GreaterThanOrEqual(stop) {
				return models.OutcomeStopHit, i
			}
			if c.Low.LessThanOrEqual(target) {
				return models.OutcomeTargetHit, i
			}
		}
	}
	return models.OutcomeUndecided, -1
}
