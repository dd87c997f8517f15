package helper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"pivot_bot/internal/models"
)

const (
	// DateLayout - формат дат провайдера и отчётов.
	DateLayout = "2006-01-02"
	// RequestDateLayout - формат даты в запросах (DD-MM-YYYY).
	RequestDateLayout = "02-01-2006"
)

var (
	ErrDateFormat = fmt.Errorf("%w: use DD-MM-YYYY format (example: 25-12-2023)", models.ErrInvalidDate)
	ErrDateValue  = fmt.Errorf("%w: check the date values", models.ErrInvalidDate)

	requestDateRe = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// MarketLocation - зона рынка; если tzdata нет, IST фиксированным смещением.
func MarketLocation(name string) *time.Location {
	if name == "" {
		name = "Asia/Kolkata"
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}

// ParseRequestDate разбирает DD-MM-YYYY. Формат и календарную корректность проверяем раздельно.
func ParseRequestDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !requestDateRe.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}
	d, err := time.ParseInLocation(RequestDateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrDateValue
	}
	return d, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Calendar - выходные + праздники из конфига.
type Calendar struct {
	holidays map[string]struct{}
}

func NewCalendar(holidays []string) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[strings.TrimSpace(h)] = struct{}{}
	}
	return c
}

func (c *Calendar) IsHoliday(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.holidays[FormatDate(t)]
	return ok
}

func (c *Calendar) IsTradingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(t)
}

// PreviousTradingDay: понедельник => пятница, воскресенье => пятница, иначе -1 день,
// дальше отматываем праздники и выходные.
func (c *Calendar) PreviousTradingDay(t time.Time) time.Time {
	days := 1
	switch t.Weekday() {
	case time.Monday:
		days = 3
	case time.Sunday:
		days = 2
	}
	prev := t.AddDate(0, 0, -days)
	for !c.IsTradingDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// SessionDates - пара (предыдущий торговый день, тестируемый день) для даты запроса.
func (c *Calendar) SessionDates(date string, loc *time.Location) (prev, cur time.Time, err error) {
	cur, err = ParseRequestDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return c.PreviousTradingDay(cur), cur, nil
}

// ValidateRange: дата пивота строго раньше тестируемой.
func ValidateRange(prev, cur time.Time) error {
	if prev.IsZero() || cur.IsZero() {
		return models.ErrInvalidDate
	}
	if !prev.Before(cur) {
		return fmt.Errorf("%w: pivot date %s is not before %s", models.ErrInvalidDateRange, FormatDate(prev), FormatDate(cur))
	}
	return nil
}
