package service

import (
	"pivot_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNoEntry = errors.New("entry price unavailable")
	// ErrDegenerateRisk - стоп оказался по ту же сторону от входа, что и цель (гэп через уровень).
	ErrDegenerateRisk = errors.New("stop loss is not on the risk side of entry")
)

// RiskManager считает SL/TP для сигнала.
// StopBuffer - отступ структурного стопа за уровень (0.001 = 0.1%),
// MaxStop - максимальная дистанция стопа от входа (0.005 = 0.5%),
// RewardRisk - множитель цели к риску.
type RiskManager struct {
	StopBuffer decimal.Decimal
	MaxStop    decimal.Decimal
	RewardRisk decimal.Decimal
}

func NewRiskManager(stopBuffer, maxStop, rewardRisk float64) RiskManager {
	return RiskManager{
		StopBuffer: decimal.NewFromFloat(stopBuffer),
		MaxStop:    decimal.NewFromFloat(maxStop),
		RewardRisk: decimal.NewFromFloat(rewardRisk),
	}
}

func DefaultRiskManager() RiskManager {
	return NewRiskManager(0.001, 0.005, 2)
}

// Levels возвращает стоп и цель, округлённые до PriceDecimals.
//
// LONG:  стоп = max(min(c1.low, level*(1-buf)), entry*(1-max)), цель = entry + RR*(entry-стоп).
// SHORT: стоп = min(max(c1.high, level*(1+buf)), entry*(1+max)), цель = entry - RR*(стоп-entry).
func (m RiskManager) Levels(sig models.Signal, entry decimal.NullDecimal) (stop, target decimal.Decimal, err error) {
	if !entry.Valid || !entry.Decimal.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrNoEntry
	}
	px := entry.Decimal
	one := decimal.NewFromInt(1)

	switch sig.Side {
	case models.SideLong:
		structural := decimal.Min(sig.Candle1.Low, sig.PivotLevel.Mul(one.Sub(m.StopBuffer)))
		limit := px.Mul(one.Sub(m.MaxStop))
		stop = decimal.Max(structural, limit).Round(PriceDecimals)
		if !stop.LessThan(px) {
			return decimal.Zero, decimal.Zero, ErrDegenerateRisk
		}
		target = px.Add(m.RewardRisk.Mul(px.Sub(stop))).Round(PriceDecimals)

	case models.SideShort:
		structural := decimal.Max(sig.Candle1.High, sig.PivotLevel.Mul(one.Add(m.StopBuffer)))
		limit := px.Mul(one.Add(m.MaxStop))
		stop = decimal.Min(structural, limit).Round(PriceDecimals)
		if !stop.GreaterThan(px) {
			return decimal.Zero, decimal.Zero, ErrDegenerateRisk
		}
		target = px.Sub(m.RewardRisk.Mul(stop.Sub(px))).Round(PriceDecimals)

	default:
		return decimal.Zero, decimal.Zero, errors.Errorf("unknown side %q", sig.Side)
	}
	return stop, target, nil
}

// EntryPrice - open первой свечи после подтверждающей; если её нет - close подтверждающей.
// Вторым значением отдаётся индекс свечи входа (или confirmIdx).
func EntryPrice(candles []models.Candle, confirmIdx int) (decimal.NullDecimal, int) {
	if confirmIdx < 0 || confirmIdx >= len(candles) {
		return decimal.NullDecimal{}, -1
	}
	if confirmIdx+1 < len(candles) {
		return decimal.NewNullDecimal(candles[confirmIdx+1].Open), confirmIdx + 1
	}
	return decimal.NewNullDecimal(candles[confirmIdx].Close), confirmIdx
}
