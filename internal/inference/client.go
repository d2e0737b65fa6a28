package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"store_assistant/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// MaxImageSize is the largest product photo the backend accepts.
const MaxImageSize = 10 << 20

var (
	ErrNotFound        = errors.New("inference endpoint not found")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrServer          = errors.New("inference server error")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrEmptyImage      = errors.New("image is empty")
)

type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference api error: %s", e.Status)
	}
	return fmt.Sprintf("inference api error: %s: %s", e.Status, e.Body)
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.InferenceBaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		http:   httpClient,
		logger: logger.Named("inference"),
	}
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (Reply, error) {
	if strings.TrimSpace(req.Message) == "" && req.ImageData == "" {
		return Reply{}, ErrEmptyMessage
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&rawReply{}).
		ForceContentType("application/json").
		Post("/chat")
	if err != nil {
		c.logger.Warn("chat request failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return Reply{}, fmt.Errorf("inference request: %w", err)
	}
	c.logger.Debug("chat response",
		zap.String("session_id", req.SessionID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
	)
	if resp.IsError() {
		return Reply{}, apiErrorFromResponse(resp)
	}

	return replyFromResponse(resp), nil
}

// AnalyzeProductImage uploads a product photo and returns the extracted product draft.
func (c *Client) AnalyzeProductImage(ctx context.Context, userID, filename string, data []byte) (Reply, error) {
	if len(data) == 0 {
		return Reply{}, ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return Reply{}, fmt.Errorf("%w: image is %d bytes, limit is %d", ErrPayloadTooLarge, len(data), MaxImageSize)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{"user_id": userID}).
		SetResult(&rawReply{}).
		ForceContentType("application/json").
		Post("/products/analyze")
	if err != nil {
		c.logger.Warn("analyze request failed", zap.String("file", filename), zap.Error(err))
		return Reply{}, fmt.Errorf("inference request: %w", err)
	}
	c.logger.Debug("analyze response",
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
		zap.Int("status", resp.StatusCode()),
	)
	if resp.IsError() {
		return Reply{}, apiErrorFromResponse(resp)
	}

	return replyFromResponse(resp), nil
}

func replyFromResponse(resp *resty.Response) Reply {
	raw, ok := resp.Result().(*rawReply)
	if !ok || raw == nil {
		return Reply{}
	}
	return normalize(*raw)
}

func apiErrorFromResponse(resp *resty.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       strings.TrimSpace(resp.String()),
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	case resp.StatusCode() == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", ErrPayloadTooLarge, apiErr.Error())
	case resp.StatusCode() >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrServer, apiErr.Error())
	default:
		return apiErr
	}
}

// FriendlyError turns a backend failure into a message fit for the shop owner.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotFound):
		return "The assistant service could not find that endpoint. Check the inference URL."
	case errors.Is(err, ErrPayloadTooLarge):
		return "That image is too large. Please use a photo under 10 MB."
	case errors.Is(err, ErrServer):
		return "The assistant service is having trouble right now. Please try again later."
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrEmptyImage):
		return "There was nothing to send."
	case errors.Is(err, context.DeadlineExceeded):
		return "The assistant took too long to answer. Please try again."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The assistant service returned an error (%s).", apiErr.Status)
	default:
		return "Could not reach the assistant service. Check your connection."
	}
}
