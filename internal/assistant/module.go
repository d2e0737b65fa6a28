package assistant

import (
	"store_assistant/internal/catalog"
	"store_assistant/internal/config"
	"store_assistant/internal/inference"
	"store_assistant/internal/ledger"
	"store_assistant/internal/llm"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/session"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"assistant",
		fx.Provide(
			NewSQLiteMessageRepository,
			newResponder,
			newService,
		),
	)
}

func newResponder(cfg config.Config, client *inference.Client, llmClient *llm.Client, products *catalog.Service, ledgerSvc *ledger.Service, notifier *notifications.Service, logger *zap.Logger) Responder {
	if cfg.AssistantBackend == config.BackendLLM {
		logger.Info("assistant backend selected", zap.String("backend", config.BackendLLM), zap.String("model", llmClient.Model()))
		return NewAgent(llmClient, products, ledgerSvc, notifier, logger)
	}
	logger.Info("assistant backend selected", zap.String("backend", config.BackendInference), zap.String("url", cfg.InferenceBaseURL))
	return NewInferenceResponder(client)
}

func newService(
	cfg config.Config,
	sessions *session.Manager,
	messages MessageRepository,
	responder Responder,
	client *inference.Client,
	products *catalog.Service,
	ledgerSvc *ledger.Service,
	profiles *profile.Service,
	notifier *notifications.Service,
	logger *zap.Logger,
) *Service {
	return NewService(Deps{
		Sessions:      sessions,
		Messages:      messages,
		Responder:     responder,
		Analyzer:      client,
		Products:      products,
		Ledger:        ledgerSvc,
		Profiles:      profiles,
		Notifications: notifier,
		CashierName:   cfg.CashierName,
		Logger:        logger,
	})
}
