package assistant

import (
	"strings"
	"sync"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultHistoryMaxMessages = 20
	defaultHistoryMaxTokens   = 2000
)

// History is the bounded model context of one chat session. The system prompt, when first, is never trimmed.
type History struct {
	mu          sync.Mutex
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxTokens   int
	logger      *zap.Logger
}

func NewHistory(maxMessages, maxTokens int, logger *zap.Logger) *History {
	if maxMessages <= 0 {
		maxMessages = defaultHistoryMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultHistoryMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (h *History) Append(messages ...openrouter.ChatCompletionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, messages...)
	h.enforceLimits()
}

func (h *History) Messages() []openrouter.ChatCompletionMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return nil
	}
	out := make([]openrouter.ChatCompletionMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *History) TokenCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return estimateTokens(h.messages)
}

func (h *History) enforceLimits() {
	trimmed := false
	if len(h.messages) > h.maxMessages {
		h.messages = trimByCount(h.messages, h.maxMessages)
		trimmed = true
	}
	for len(h.messages) > 1 && estimateTokens(h.messages) > h.maxTokens {
		next := trimOldestNonSystem(h.messages)
		if len(next) == len(h.messages) {
			break
		}
		h.messages = next
		trimmed = true
	}
	if trimmed {
		h.logger.Debug("history trimmed",
			zap.Int("messages", len(h.messages)),
			zap.Int("tokens", estimateTokens(h.messages)),
		)
	}
}

func trimByCount(messages []openrouter.ChatCompletionMessage, max int) []openrouter.ChatCompletionMessage {
	if len(messages) <= max {
		return messages
	}
	if max <= 0 {
		return nil
	}
	if messages[0].Role != openrouter.ChatMessageRoleSystem {
		return append([]openrouter.ChatCompletionMessage(nil), messages[len(messages)-max:]...)
	}
	if max == 1 {
		return messages[:1]
	}
	out := make([]openrouter.ChatCompletionMessage, 0, max)
	out = append(out, messages[0])
	return append(out, messages[len(messages)-(max-1):]...)
}

func trimOldestNonSystem(messages []openrouter.ChatCompletionMessage) []openrouter.ChatCompletionMessage {
	if len(messages) == 0 {
		return nil
	}
	if messages[0].Role != openrouter.ChatMessageRoleSystem {
		return messages[1:]
	}
	if len(messages) == 1 {
		return messages
	}
	out := make([]openrouter.ChatCompletionMessage, 0, len(messages)-1)
	out = append(out, messages[0])
	return append(out, messages[2:]...)
}

// estimateTokens approximates the token count by whitespace-separated words.
func estimateTokens(messages []openrouter.ChatCompletionMessage) int {
	total := 0
	for _, msg := range messages {
		if msg.Content.Text != "" {
			total += len(strings.Fields(msg.Content.Text))
			continue
		}
		for _, part := range msg.Content.Multi {
			total += len(strings.Fields(part.Text))
		}
	}
	return total
}

// histories keeps one History per chat session.
type histories struct {
	mu       sync.Mutex
	sessions map[string]*History
	logger   *zap.Logger
}

func newHistories(logger *zap.Logger) *histories {
	return &histories{sessions: map[string]*History{}, logger: logger}
}

func (h *histories) get(sessionID string) *History {
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.sessions[sessionID]
	if !ok {
		hist = NewHistory(0, 0, h.logger)
		h.sessions[sessionID] = hist
	}
	return hist
}

func (h *histories) drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}
