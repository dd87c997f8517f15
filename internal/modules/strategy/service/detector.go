package service

import (
	"pivot_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrAmbiguousPivotCross - пара свечей задевает больше одного уровня; такая пара просто пропускается.
var ErrAmbiguousPivotCross = errors.New("candle pair spans more than one pivot level")

// Detect ищет первый разворот у пивота в хронологической последовательности свечей окна детекции.
// Пары (c[i], c[i+1]) проверяются по порядку, уровни - в порядке models.ScanOrder.
// После первого совпадения дальше не смотрим: максимум один сигнал в день.
func Detect(candles []models.Candle, levels models.PivotLevels) (*models.Signal, bool) {
	if levels.IsZero() {
		return nil, false
	}

	for i := 0; i+1 < len(candles); i++ {
		c1, c2 := candles[i], candles[i+1]
		if err := singlePivot(c1, c2, levels); err != nil {
			continue
		}

		for _, label := range models.ScanOrder {
			level := levels.Level(label)
			if sig, ok := matchLong(c1, c2, label, level); ok {
				return sig, true
			}
			if sig, ok := matchShort(c1, c2, label, level); ok {
				return sig, true
			}
		}
	}
	return nil, false
}

// singlePivot: в общий диапазон [min low, max high] пары должно попадать не больше одного уровня.
func singlePivot(c1, c2 models.Candle, levels models.PivotLevels) error {
	lo := decimal.Min(c1.Low, c2.Low)
	hi := decimal.Max(c1.High, c2.High)
	if PivotsWithin(lo, hi, levels) > 1 {
		return ErrAmbiguousPivotCross
	}
	return nil
}

// PivotsWithin - сколько уровней лежит в [lo, hi] включительно.
func PivotsWithin(lo, hi decimal.Decimal, levels models.PivotLevels) int {
	n := 0
	for _, label := range models.ScanOrder {
		l := levels.Level(label)
		if l.GreaterThanOrEqual(lo) && l.LessThanOrEqual(hi) {
			n++
		}
	}
	return n
}

// matchLong: c1 пересекает уровень снизу вверх, тело под уровнем строго больше тела над ним;
// c2 целиком над уровнем и бычья.
func matchLong(c1, c2 models.Candle, label models.PivotLabel, level decimal.Decimal) (*models.Signal, bool) {
	if !(c1.Open.LessThan(level) && level.LessThan(c1.Close)) {
		return nil, false
	}
	below := level.Sub(c1.Open)
	above := c1.Close.Sub(level)
	if !below.GreaterThan(above) {
		return nil, false
	}
	if !c2.Low.GreaterThan(level) || !c2.Bullish() {
		return nil, false
	}
	return &models.Signal{
		Side:            models.SideLong,
		PivotLabel:      label,
		PivotLevel:      level,
		Candle1:         c1,
		Candle2:         c2,
		BodyBeforeCross: below,
		BodyAfterCross:  above,
	}, true
}

// matchShort - зеркально matchLong.
func matchShort(c1, c2 models.Candle, label models.PivotLabel, level decimal.Decimal) (*models.Signal, bool) {
	if !(c1.Open.GreaterThan(level) && level.GreaterThan(c1.Close)) {
		return nil, false
	}
	above := c1.Open.Sub(level)
	below := level.Sub(c1.Close)
	if !above.GreaterThan(below) {
		return nil, false
	}
	if !c2.High.LessThan(level) || !c2.Bearish() {
		return nil, false
	}
	return &models.Signal{
		Side:            models.SideShort,
		PivotLabel:      label,
		PivotLevel:      level,
		Candle1:         c1,
		Candle2:         c2,
		BodyBeforeCross: above,
		BodyAfterCross:  below,
	}, true
}
