package profile

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"profile",
		fx.Provide(
			NewSQLiteRepository,
			NewService,
		),
	)
}
