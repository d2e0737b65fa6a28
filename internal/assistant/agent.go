package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"store_assistant/internal/catalog"
	"store_assistant/internal/ledger"
	"store_assistant/internal/llm"
	"store_assistant/internal/notifications"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	maxToolRounds      = 4
	defaultSearchLimit = 10
)

// ChatModel is the part of the LLM client the agent needs.
type ChatModel interface {
	Enabled() bool
	ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionResponse, error)
}

// Agent answers through an LLM that can call the store's own data as tools.
type Agent struct {
	model         ChatModel
	products      *catalog.Service
	ledger        *ledger.Service
	notifications *notifications.Service
	histories     *histories
	logger        *zap.Logger
}

func NewAgent(model ChatModel, products *catalog.Service, ledgerSvc *ledger.Service, notifier *notifications.Service, logger *zap.Logger) *Agent {
	logger = logger.Named("agent")
	return &Agent{
		model:         model,
		products:      products,
		ledger:        ledgerSvc,
		notifications: notifier,
		histories:     newHistories(logger),
		logger:        logger,
	}
}

func (a *Agent) Forget(sessionID string) {
	a.histories.drop(sessionID)
}

func (a *Agent) Respond(ctx context.Context, p Prompt) (Reply, error) {
	if a.model == nil || !a.model.Enabled() {
		return Reply{}, llm.ErrNotConfigured
	}

	history := a.histories.get(p.SessionID)
	if history.Len() == 0 {
		history.Append(openrouter.SystemMessage(llm.SystemPrompt(p.StoreName)))
	}
	history.Append(openrouter.UserMessage(p.Text))

	var records []ToolCallRecord
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.model.ChatWithMessages(ctx, history.Messages(), llm.ToolSchemas())
		if err != nil {
			return Reply{}, err
		}
		a.logUsage(resp)
		if len(resp.Choices) == 0 {
			return Reply{}, errors.New("llm returned empty response")
		}

		msg := resp.Choices[0].Message
		a.logger.Debug("llm response",
			zap.String("content", msg.Content.Text),
			zap.Int("tool_calls", len(msg.ToolCalls)),
		)
		history.Append(msg)

		if len(msg.ToolCalls) == 0 {
			return Reply{Text: strings.TrimSpace(msg.Content.Text), ToolCalls: records}, nil
		}

		toolMsgs, callRecords := a.executeToolCalls(ctx, p.UserID, msg.ToolCalls)
		records = append(records, callRecords...)
		history.Append(toolMsgs...)
	}

	return Reply{
		Text:      "I could not finish that request in time. Try asking something more specific.",
		ToolCalls: records,
	}, nil
}

// executeToolCalls answers every call; failures go back to the model as error payloads.
func (a *Agent) executeToolCalls(ctx context.Context, userID string, calls []llm.ToolCall) ([]openrouter.ChatCompletionMessage, []ToolCallRecord) {
	toolMessages := make([]openrouter.ChatCompletionMessage, 0, len(calls))
	records := make([]ToolCallRecord, 0, len(calls))

	for _, call := range calls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				record := ToolCallRecord{Name: call.Function.Name, OK: false, Err: fmt.Sprintf("invalid tool args: %v", err)}
				logToolRecord(a.logger, record)
				records = append(records, record)
				toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)))
				continue
			}
		}

		result, record, err := a.dispatch(ctx, userID, call.Function.Name, args)
		records = append(records, record)
		if err != nil {
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())))
			continue
		}
		payload, err := json.Marshal(result)
		if err != nil {
			toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())))
			continue
		}
		toolMessages = append(toolMessages, openrouter.ToolMessage(call.ID, string(payload)))
	}
	return toolMessages, records
}

func (a *Agent) dispatch(ctx context.Context, userID, name string, args map[string]any) (any, ToolCallRecord, error) {
	switch name {
	case llm.ToolSearchProducts:
		query, _ := getStringArg(args, "query")
		limit := getIntArg(args, "limit", defaultSearchLimit)
		return trackCall(a.logger, name, args, func() ([]*catalog.Product, error) {
			return a.products.Search(ctx, userID, query, limit)
		})
	case llm.ToolListLowStock:
		return trackCall(a.logger, name, args, func() ([]*catalog.Product, error) {
			return a.products.LowStock(ctx, userID)
		})
	case llm.ToolGetSalesSummary:
		from, err := getTimeArg(args, "from")
		if err != nil {
			return nil, ToolCallRecord{Name: name, Args: args, Err: err.Error()}, err
		}
		to := time.Now()
		if raw, ok := getStringArg(args, "to"); ok && raw != "" {
			if to, err = getTimeArg(args, "to"); err != nil {
				return nil, ToolCallRecord{Name: name, Args: args, Err: err.Error()}, err
			}
		}
		return trackCall(a.logger, name, args, func() (ledger.Summary, error) {
			return a.ledger.Summary(ctx, userID, from, to)
		})
	case llm.ToolListNotifications:
		unreadOnly := getBoolArg(args, "unread_only")
		return trackCall(a.logger, name, args, func() ([]*notifications.Notification, error) {
			if unreadOnly {
				return a.notifications.ListUnread(ctx, userID)
			}
			return a.notifications.List(ctx, userID, 0)
		})
	default:
		err := fmt.Errorf("unknown tool: %s", name)
		return nil, ToolCallRecord{Name: name, Args: args, Err: err.Error()}, err
	}
}

func (a *Agent) logUsage(resp openrouter.ChatCompletionResponse) {
	if resp.Usage == nil {
		return
	}
	a.logger.Info("llm usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
}

func getStringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func getIntArg(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(v)
		return parsed
	}
	return false
}

func getTimeArg(args map[string]any, key string) (time.Time, error) {
	value, ok := getStringArg(args, key)
	if !ok || value == "" {
		return time.Time{}, fmt.Errorf("missing %s", key)
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func toolErrorPayload(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, message)
	}
	return string(encoded)
}
