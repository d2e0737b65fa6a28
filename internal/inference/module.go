package inference

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"inference",
		fx.Provide(NewClient),
	)
}
