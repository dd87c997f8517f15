package models

import "github.com/shopspring/decimal"

type Outcome string

const (
	OutcomeTargetHit Outcome = "TARGET_HIT"
	OutcomeStopHit   Outcome = "STOP_HIT"
	OutcomeUndecided Outcome = "UNDECIDED"
)

// Score - результат сделки в R: +2 / -1 / 0.
func (o Outcome) Score() int {
	switch o {
	case OutcomeTargetHit:
		return 2
	case OutcomeStopHit:
		return -1
	}
	return 0
}

type Trade struct {
	Signal     Signal          `json:"signal"`
	EntryTime  string          `json:"entryTime"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	StopLoss   decimal.Decimal `json:"stopLoss"`
	Target     decimal.Decimal `json:"target"`
	Outcome    Outcome         `json:"outcome"`
	ExitTime   string          `json:"exitTime,omitempty"`
}

// InstrumentResult - итог одного инструмента за один день: 0 или 1 сделка.
type InstrumentResult struct {
	InstrumentKey string      `json:"instrumentKey"`
	Symbol        string      `json:"symbol"`
	Date          string      `json:"date"`
	Pivots        PivotLevels `json:"pivots"`
	Trades        []Trade     `json:"trades"`
}

func (r *InstrumentResult) HasTrade() bool { return r != nil && len(r.Trades) > 0 }

type InstrumentError struct {
	InstrumentKey string `json:"instrument"`
	Symbol        string `json:"symbol"`
	Message       string `json:"message"`
}

// BatchReport - агрегат одного прогона оркестратора.
type BatchReport struct {
	PreviousDate     string             `json:"previousDate"`
	Date             string             `json:"date"`
	TotalInstruments int                `json:"totalInstruments"`
	Succeeded        int                `json:"succeeded"`
	Failed           int                `json:"failed"`
	Wins             int                `json:"wins"`
	Losses           int                `json:"losses"`
	Undecided        int                `json:"undecided"`
	NetScore         int                `json:"netScore"`
	Results          []InstrumentResult `json:"results"`
	Errors           []InstrumentError  `json:"errors"`
}

// Add учитывает сделки результата в счётчиках отчёта.
func (b *BatchReport) Add(r InstrumentResult) {
	b.Results = append(b.Results, r)
	for _, t := range r.Trades {
		switch t.Outcome {
		case OutcomeTargetHit:
			b.Wins++
		case OutcomeStopHit:
			b.Losses++
		default:
			b.Undecided++
		}
		b.NetScore += t.Outcome.Score()
	}
}
