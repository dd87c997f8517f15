package models

import "github.com/shopspring/decimal"

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

type PivotLabel string

const (
	PivotPP PivotLabel = "PP"
	PivotR1 PivotLabel = "R1"
	PivotR2 PivotLabel = "R2"
	PivotR3 PivotLabel = "R3"
	PivotS1 PivotLabel = "S1"
	PivotS2 PivotLabel = "S2"
	PivotS3 PivotLabel = "S3"
)

// ScanOrder - порядок, в котором детектор проверяет уровни.
var ScanOrder = []PivotLabel{PivotPP, PivotS1, PivotS2, PivotS3, PivotR1, PivotR2, PivotR3}

// PivotLevels - классические floor-trader уровни предыдущей сессии.
type PivotLevels struct {
	PP decimal.Decimal `json:"PP"`
	R1 decimal.Decimal `json:"R1"`
	R2 decimal.Decimal `json:"R2"`
	R3 decimal.Decimal `json:"R3"`
	S1 decimal.Decimal `json:"S1"`
	S2 decimal.Decimal `json:"S2"`
	S3 decimal.Decimal `json:"S3"`
}

func (p PivotLevels) IsZero() bool {
	for _, l := range ScanOrder {
		if !p.Level(l).IsZero() {
			return false
		}
	}
	return true
}

func (p PivotLevels) Level(label PivotLabel) decimal.Decimal {
	switch label {
	case PivotPP:
		return p.PP
	case PivotR1:
		return p.R1
	case PivotR2:
		return p.R2
	case PivotR3:
		return p.R3
	case PivotS1:
		return p.S1
	case PivotS2:
		return p.S2
	case PivotS3:
		return p.S3
	}
	return decimal.Zero
}

// Ordered: R3 > R2 > R1 > PP > S1 > S2 > S3.
func (p PivotLevels) Ordered() bool {
	seq := []decimal.Decimal{p.R3, p.R2, p.R1, p.PP, p.S1, p.S2, p.S3}
	for i := 1; i < len(seq); i++ {
		if !seq[i-1].GreaterThan(seq[i]) {
			return false
		}
	}
	return true
}

// Signal - разворот у пивота: свеча-пересечение + подтверждающая свеча.
type Signal struct {
	Side            Side            `json:"type"`
	PivotLabel      PivotLabel      `json:"pivotLabel"`
	PivotLevel      decimal.Decimal `json:"pivotLevel"`
	Candle1         Candle          `json:"candle1"`
	Candle2         Candle          `json:"candle2"`
	BodyBeforeCross decimal.Decimal `json:"bodyPortionBeforeCross"`
	BodyAfterCross  decimal.Decimal `json:"bodyPortionAfterCross"`
}
