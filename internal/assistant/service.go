package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"store_assistant/internal/catalog"
	"store_assistant/internal/inference"
	"store_assistant/internal/ledger"
	"store_assistant/internal/llm"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/sales"
	"store_assistant/internal/session"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	defaultCashierName  = "Cashier"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoProduct    = errors.New("no product could be read from the photo")
)

// Answer is what the user sees for one message.
type Answer struct {
	SessionID   string              `json:"session_id"`
	Text        string              `json:"text"`
	Receipt     *sales.SalesReceipt `json:"receipt,omitempty"`
	Transaction *sales.Transaction  `json:"transaction,omitempty"`
	ReportPDF   []byte              `json:"-"`
	ToolCalls   []ToolCallRecord    `json:"tool_calls,omitempty"`
}

// ImageAnalyzer extracts a product draft from a photo.
type ImageAnalyzer interface {
	AnalyzeProductImage(ctx context.Context, userID, filename string, data []byte) (inference.Reply, error)
}

type Service struct {
	sessions      *session.Manager
	messages      MessageRepository
	responder     Responder
	analyzer      ImageAnalyzer
	products      *catalog.Service
	ledger        *ledger.Service
	profiles      *profile.Service
	notifications *notifications.Service
	cashierName   string
	logger        *zap.Logger
}

type Deps struct {
	Sessions      *session.Manager
	Messages      MessageRepository
	Responder     Responder
	Analyzer      ImageAnalyzer
	Products      *catalog.Service
	Ledger        *ledger.Service
	Profiles      *profile.Service
	Notifications *notifications.Service
	CashierName   string
	Logger        *zap.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cashier := strings.TrimSpace(d.CashierName)
	if cashier == "" {
		cashier = defaultCashierName
	}
	return &Service{
		sessions:      d.Sessions,
		messages:      d.Messages,
		responder:     d.Responder,
		analyzer:      d.Analyzer,
		products:      d.Products,
		ledger:        d.Ledger,
		profiles:      d.Profiles,
		notifications: d.Notifications,
		cashierName:   cashier,
		logger:        logger.Named("assistant"),
	}
}

// Send handles one chat message: sales text goes to checkout, everything else to the responder.
func (s *Service) Send(ctx context.Context, userID string, area session.Area, text string) (Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, ErrEmptyMessage
	}

	sessionID, err := s.sessions.GetOrCreate(ctx, userID, area)
	if err != nil {
		return Answer{}, fmt.Errorf("open session: %w", err)
	}
	answer := Answer{SessionID: sessionID}

	s.persist(ctx, sessionID, userID, RoleUser, text)

	if sales.IsSalesText(text) {
		if err := s.checkout(ctx, userID, text, &answer); err != nil {
			return Answer{}, err
		}
	} else {
		reply, err := s.responder.Respond(ctx, Prompt{
			UserID:    userID,
			SessionID: sessionID,
			StoreName: s.storeName(ctx, userID),
			Text:      text,
		})
		if err != nil {
			s.logger.Warn("responder failed", zap.String("session_id", sessionID), zap.Error(err))
			answer.Text = friendlyError(err)
		} else {
			answer.Text = reply.Text
			answer.ReportPDF = reply.ReportPDF
			answer.ToolCalls = reply.ToolCalls
		}
	}

	s.persist(ctx, sessionID, userID, RoleAssistant, answer.Text)
	return answer, nil
}

// checkout runs the sales pipeline. A sale is recorded only when every clause was read and every item validated.
func (s *Service) checkout(ctx context.Context, userID, text string, answer *Answer) error {
	inventory, err := s.products.Inventory(ctx, userID)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	items, unparsed := sales.ParseClauses(text)
	validated := sales.ValidateSaleItems(items, inventory)
	receipt := sales.GenerateSalesReceipt(validated)
	receipt.Unparsed = unparsed
	if oversold := sales.CheckCombinedStock(validated); len(oversold) > 0 {
		receipt.Errors = append(receipt.Errors, oversold...)
		receipt.IsValid = false
	}
	answer.Receipt = &receipt

	s.logger.Info("checkout",
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
		zap.Int("unparsed", len(unparsed)),
		zap.Bool("valid", receipt.IsValid),
	)

	if !receipt.Complete() {
		answer.Text = sales.FormatReceiptText(receipt) + "\nNothing was recorded. Fix the lines above and send the sale again."
		return nil
	}

	tx := sales.CreateTransactionFromReceipt(receipt, s.profiles.CashierName(ctx, userID, s.cashierName))
	if err := s.ledger.Record(ctx, userID, tx); err != nil {
		if errors.Is(err, ledger.ErrInsufficientStock) {
			answer.Text = sales.FormatReceiptText(receipt) + "\nStock changed while recording: " + err.Error() + ". Nothing was recorded."
			return nil
		}
		return fmt.Errorf("record sale: %w", err)
	}
	answer.Transaction = &tx
	answer.Text = sales.FormatReceiptText(receipt) + "\nSale recorded."
	return nil
}

// AnalyzePhoto reads a product photo, adds the detected product to the catalog and raises a notification.
func (s *Service) AnalyzePhoto(ctx context.Context, userID, path string) (*catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	reply, err := s.analyzer.AnalyzeProductImage(ctx, userID, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	if reply.Product == nil {
		if reply.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoProduct, reply.Message)
		}
		return nil, ErrNoProduct
	}

	draft := *reply.Product
	draft.UserID = userID
	if draft.ReorderLevel == 0 {
		draft.ReorderLevel = s.profiles.LowStockThreshold(ctx, userID)
	}
	p, err := s.products.Add(ctx, draft)
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.Notify(ctx, userID, notifications.KindProductAdded, "Product added",
		fmt.Sprintf("%s added at $%.2f", p.Name, p.UnitPrice)); err != nil {
		s.logger.Warn("product notification failed", zap.Error(err))
	}
	return p, nil
}

func (s *Service) History(ctx context.Context, sessionID string) ([]*Message, error) {
	return s.messages.ListBySession(ctx, sessionID, defaultHistoryLimit)
}

// CurrentSession returns the cached session id of the area, if any.
func (s *Service) CurrentSession(ctx context.Context, area session.Area) (string, bool) {
	return s.sessions.CachedID(ctx, area)
}

func (s *Service) EndSession(ctx context.Context, userID string, area session.Area) error {
	if id, ok := s.sessions.CachedID(ctx, area); ok {
		s.responder.Forget(id)
	}
	return s.sessions.End(ctx, userID, area)
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	for _, area := range session.Areas {
		if id, ok := s.sessions.CachedID(ctx, area); ok {
			s.responder.Forget(id)
		}
	}
	return s.sessions.Logout(ctx, userID)
}

func (s *Service) persist(ctx context.Context, sessionID, userID string, role Role, content string) {
	if content == "" {
		return
	}
	err := s.messages.Append(ctx, &Message{SessionID: sessionID, UserID: userID, Role: role, Content: content})
	if err != nil {
		s.logger.Warn("persist chat message failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *Service) storeName(ctx context.Context, userID string) string {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return p.StoreName
}

func friendlyError(err error) string {
	var apiErr *inference.APIError
	switch {
	case errors.Is(err, inference.ErrNotFound), errors.Is(err, inference.ErrPayloadTooLarge),
		errors.Is(err, inference.ErrServer), errors.As(err, &apiErr):
		return inference.FriendlyError(err)
	case errors.Is(err, llm.ErrNotConfigured):
		return "The LLM backend is not configured. Set llm_api_key and llm_model, or use the inference backend."
	case errors.Is(err, context.DeadlineExceeded):
		return "The assistant took too long to answer. Please try again."
	default:
		return "Sorry, I could not answer that: " + err.Error()
	}
}
