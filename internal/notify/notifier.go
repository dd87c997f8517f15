package notify

import (
	"context"

	"pivot_bot/pkg/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier публикует текст (HTML) и необязательный структурированный payload.
type Notifier interface {
	Publish(ctx context.Context, message string, payload any) error
}

// Multi - рассылка во все каналы; ошибка одного не мешает остальным.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, message string, payload any) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		if e := n.Publish(ctx, message, payload); e != nil {
			logger.With(zap.String("notifier", name(n))).Warn("publish failed", zap.Error(e))
			err = multierr.Append(err, e)
		}
	}
	return err
}

// Stdout - канал по умолчанию: всё в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Publish(_ context.Context, message string, payload any) error {
	fields := []zap.Field{zap.String("message", message)}
	if payload != nil {
		fields = append(fields, zap.Any("payload", payload))
	}
	logger.With(fields...).Info("notify")
	return nil
}

func name(n Notifier) string {
	switch n.(type) {
	case *Telegram:
		return "telegram"
	case *Hub:
		return "ws"
	case *Stdout:
		return "stdout"
	}
	return "custom"
}
