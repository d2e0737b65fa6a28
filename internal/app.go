package internal

import (
	"context"
	"errors"
	"flag"
	"os"

	"store_assistant/internal/assistant"
	"store_assistant/internal/catalog"
	"store_assistant/internal/cli"
	"store_assistant/internal/config"
	"store_assistant/internal/inference"
	"store_assistant/internal/ledger"
	"store_assistant/internal/llm"
	"store_assistant/internal/logging"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/session"
	"store_assistant/internal/store"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	opts, err := cli.ParseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		fx.Supply(opts),
		fx.Decorate(opts.Apply),
		logging.Module(),
		store.Module(),
		profile.Module(),
		catalog.Module(),
		notifications.Module(),
		ledger.Module(),
		session.Module(),
		inference.Module(),
		llm.Module(),
		assistant.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
