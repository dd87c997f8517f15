package models

import "github.com/pkg/errors"

var (
	// ErrConfiguration - не задан адрес провайдера; фатально для всего прогона.
	ErrConfiguration = errors.New("external API URL not configured")
	// ErrDataUnavailable - провайдер не вернул пригодных свечей по инструменту.
	ErrDataUnavailable = errors.New("candle data unavailable")
	ErrInvalidDate     = errors.New("invalid date")
	// ErrInvalidDateRange - дата пивота не раньше тестируемой даты.
	ErrInvalidDateRange = errors.New("invalid date range")
)
