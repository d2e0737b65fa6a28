package assistant

import (
	"context"
	"errors"
	"strings"

	"store_assistant/internal/inference"
)

// Prompt is one free-form message routed to a backend.
type Prompt struct {
	UserID    string
	SessionID string
	StoreName string
	Text      string
}

type Reply struct {
	Text      string
	ReportPDF []byte
	ToolCalls []ToolCallRecord
}

// Responder answers messages that are not sales text.
type Responder interface {
	Respond(ctx context.Context, p Prompt) (Reply, error)
	// Forget drops whatever per-session state the backend keeps.
	Forget(sessionID string)
}

type inferenceResponder struct {
	client *inference.Client
}

func NewInferenceResponder(client *inference.Client) Responder {
	return &inferenceResponder{client: client}
}

func (r *inferenceResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	resp, err := r.client.Chat(ctx, inference.ChatRequest{
		Message:   p.Text,
		UserID:    p.UserID,
		SessionID: p.SessionID,
	})
	if err != nil {
		return Reply{}, err
	}
	if strings.EqualFold(resp.Status, "error") {
		msg := resp.Message
		if msg == "" {
			msg = "the assistant could not answer"
		}
		return Reply{}, errors.New(msg)
	}
	return Reply{Text: resp.Message, ReportPDF: resp.ReportPDF}, nil
}

func (r *inferenceResponder) Forget(string) {}
