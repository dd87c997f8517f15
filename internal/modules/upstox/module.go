package upstox

import (
	"pivot_bot/internal/modules/upstox/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("upstox",
		fx.Provide(service.NewClient),
	)
}
