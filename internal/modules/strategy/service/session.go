package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const minutesPerDay = 24 * 60

// Window - дневные окна сессии в минутах от полуночи (локальное время рынка).
// Детекция: [DetectFrom, DetectTo] включительно; симуляция идёт строго до Cutoff.
type Window struct {
	DetectFrom int
	DetectTo   int
	Cutoff     int
	Interval   time.Duration
}

func DefaultWindow() Window {
	return Window{
		DetectFrom: 9*60 + 20,
		DetectTo:   11*60 + 20,
		Cutoff:     15 * 60,
		Interval:   5 * time.Minute,
	}
}

// NewWindow собирает окно из 12-часовых меток ("9:20 AM").
func NewWindow(from, to, cutoff string, interval time.Duration) (Window, error) {
	f, err := ParseClock(from)
	if err != nil {
		return Window{}, errors.Wrap(err, "detect_from")
	}
	t, err := ParseClock(to)
	if err != nil {
		return Window{}, errors.Wrap(err, "detect_to")
	}
	c, err := ParseClock(cutoff)
	if err != nil {
		return Window{}, errors.Wrap(err, "cutoff")
	}
	if f > t {
		return Window{}, fmt.Errorf("detection window start %s is after end %s", from, to)
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return Window{DetectFrom: f, DetectTo: t, Cutoff: c, Interval: interval}, nil
}

// ParseClock переводит "h:mm AM|PM" в минуты от полуночи.
// 12:xx AM => 0 часов, 12:xx PM => 12 часов.
func ParseClock(label string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	var clock, suffix string
	switch {
	case strings.HasSuffix(s, "AM"):
		clock, suffix = s[:len(s)-2], "AM"
	case strings.HasSuffix(s, "PM"):
		clock, suffix = s[:len(s)-2], "PM"
	default:
		return 0, fmt.Errorf("clock label %q: missing AM/PM", label)
	}

	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, fmt.Errorf("clock label %q: missing ':'", label)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 1 || h > 12 {
		return 0, fmt.Errorf("clock label %q: bad hour", label)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock label %q: bad minute", label)
	}

	h %= 12
	if suffix == "PM" {
		h += 12
	}
	return h*60 + m, nil
}

// FormatClock - обратное к ParseClock; выходящее за сутки значение заворачивается.
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	h, m := minutes/60, minutes%60

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

func (w Window) InDetection(label string) bool {
	m, err := ParseClock(label)
	if err != nil {
		return false
	}
	return m >= w.DetectFrom && m <= w.DetectTo
}

// BeforeCutoff: нечитаемая метка считается за отсечкой.
func (w Window) BeforeCutoff(label string) bool {
	m, err := ParseClock(label)
	if err != nil {
		return false
	}
	return m < w.Cutoff
}

// NextInterval - метка следующей свечи (ровно один интервал вперёд).
func (w Window) NextInterval(label string) (string, error) {
	m, err := ParseClock(label)
	if err != nil {
		return "", err
	}
	return FormatClock(m + int(w.Interval/time.Minute)), nil
}
