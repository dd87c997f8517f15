package notify

import (
	"fmt"
	"html"
	"strings"

	"pivot_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

func FormatJSON(payload any) (string, error) {
	raw, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "format json")
	}
	return string(raw), nil
}

// FormatReport - HTML-сводка прогона для Telegram.
func FormatReport(r *models.BatchReport) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Pivot backtest %s</b> (pivots from %s)\n", r.Date, r.PreviousDate)
	fmt.Fprintf(&b, "Instruments: %d, ok %d, failed %d\n", r.TotalInstruments, r.Succeeded, r.Failed)
	fmt.Fprintf(&b, "Trades: %d | wins %d | losses %d | undecided %d\n", r.Wins+r.Losses+r.Undecided, r.Wins, r.Losses, r.Undecided)
	fmt.Fprintf(&b, "<b>Net score: %+d</b>\n", r.NetScore)

	if len(r.Results) > 0 {
		b.WriteString("\n")
		for _, res := range r.Results {
			for _, t := range res.Trades {
				b.WriteString(tradeLine(res.Symbol, t))
				b.WriteString("\n")
			}
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n<b>Errors (%d)</b>\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(e.Symbol), html.EscapeString(e.Message))
		}
	}
	return b.String()
}

// FormatResult - один инструмент.
func FormatResult(r *models.InstrumentResult) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> %s\n", html.EscapeString(r.Symbol), r.Date)
	p := r.Pivots
	fmt.Fprintf(&b, "PP %s | R1 %s R2 %s R3 %s | S1 %s S2 %s S3 %s\n",
		p.PP, p.R1, p.R2, p.R3, p.S1, p.S2, p.S3)
	if !r.HasTrade() {
		b.WriteString("No signal")
		return b.String()
	}
	for _, t := range r.Trades {
		b.WriteString(tradeLine(r.Symbol, t))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func tradeLine(symbol string, t models.Trade) string {
	exit := ""
	if t.ExitTime != "" {
		exit = " @ " + t.ExitTime
	}
	return fmt.Sprintf("%s %s %s %s: entry %s @ %s, SL %s, TP %s => <b>%s</b>%s (%+d)",
		outcomeMark(t.Outcome), html.EscapeString(symbol), t.Signal.Side, t.Signal.PivotLabel,
		t.EntryPrice, t.EntryTime, t.StopLoss, t.Target, t.Outcome, exit, t.Outcome.Score())
}

func outcomeMark(o models.Outcome) string {
	switch o {
	case models.OutcomeTargetHit:
		return "✅"
	case models.OutcomeStopHit:
		return "❌"
	}
	return "⏳"
}
