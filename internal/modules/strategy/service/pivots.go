package service

import (
	"pivot_bot/internal/models"

	"github.com/shopspring/decimal"
)

// PriceDecimals - точность, до которой округляются уровни, стопы и цели.
const PriceDecimals = 4

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
)

// CalcPivots считает семь классических уровней по опорной свече (candles[0] - дневная свеча
// предыдущей сессии, как её вернул провайдер). Пустой вход => нулевые уровни и false.
func CalcPivots(candles []models.Candle) (models.PivotLevels, bool) {
	if len(candles) == 0 {
		return models.PivotLevels{}, false
	}

	ref := candles[0]
	h, l, c := ref.High, ref.Low, ref.Close

	pp := h.Add(l).Add(c).Div(three)
	rng := h.Sub(l)

	levels := models.PivotLevels{
		PP: pp,
		R1: two.Mul(pp).Sub(l),
		S1: two.Mul(pp).Sub(h),
		R2: pp.Add(rng),
		S2: pp.Sub(rng),
		R3: h.Add(two.Mul(pp.Sub(l))),
		S3: l.Sub(two.Mul(h.Sub(pp))),
	}
	return roundLevels(levels), true
}

func roundLevels(p models.PivotLevels) models.PivotLevels {
	return models.PivotLevels{
		PP: p.PP.Round(PriceDecimals),
		R1: p.R1.Round(PriceDecimals),
		R2: p.R2.Round(PriceDecimals),
		R3: p.R3.Round(PriceDecimals),
		S1: p.S1.Round(PriceDecimals),
		S2: p.S2.Round(PriceDecimals),
		S3: p.S3.Round(PriceDecimals),
	}
}
