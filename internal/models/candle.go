package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClockLayout - 12-часовая метка времени свечи, как её показывает провайдер ("9:20 AM").
const ClockLayout = "3:04 PM"

// Candle - одна свеча сессии. После получения не меняется.
type Candle struct {
	Time   time.Time       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Label - время свечи в зоне рынка, 12-часовой формат.
func (c Candle) Label() string { return c.Time.Format(ClockLayout) }

func (c Candle) Bullish() bool { return c.Close.GreaterThan(c.Open) }
func (c Candle) Bearish() bool { return c.Close.LessThan(c.Open) }

// Reversed возвращает копию в обратном порядке: провайдер отдаёт newest-first.
func Reversed(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	for i, c := range candles {
		out[len(candles)-1-i] = c
	}
	return out
}
