package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"store_assistant/internal/assistant"
	"store_assistant/internal/catalog"
	"store_assistant/internal/config"
	"store_assistant/internal/ledger"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/session"

	"go.uber.org/zap"
)

var ErrMissingUser = errors.New("user id is required: pass -user or set USER_ID")

type Runner struct {
	options       Options
	userID        string
	area          session.Area
	assistant     *assistant.Service
	products      *catalog.Service
	ledger        *ledger.Service
	notifications *notifications.Service
	profiles      *profile.Service
	logger        *zap.Logger
	in            io.Reader
	out           io.Writer
	now           func() time.Time
}

func NewRunner(
	opts Options,
	cfg config.Config,
	assistantSvc *assistant.Service,
	products *catalog.Service,
	ledgerSvc *ledger.Service,
	notifier *notifications.Service,
	profiles *profile.Service,
	logger *zap.Logger,
) (*Runner, error) {
	area, err := session.ParseArea(cfg.Area)
	if err != nil {
		return nil, err
	}
	return &Runner{
		options:       opts,
		userID:        strings.TrimSpace(cfg.UserID),
		area:          area,
		assistant:     assistantSvc,
		products:      products,
		ledger:        ledgerSvc,
		notifications: notifier,
		profiles:      profiles,
		logger:        logger.Named("cli"),
		in:            os.Stdin,
		out:           os.Stdout,
		now:           time.Now,
	}, nil
}

func (r *Runner) Execute() error {
	if r.userID == "" {
		return ErrMissingUser
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if r.options.Query == "" {
		return r.runREPL(ctx)
	}
	_, err := r.handleLine(ctx, r.options.Query)
	return err
}

func (r *Runner) runREPL(ctx context.Context) error {
	reader := bufio.NewScanner(r.in)
	fmt.Fprintf(r.out, "Store assistant for %s in %s (type /help for commands, 'exit' to quit)\n", r.userID, r.area)

	for {
		fmt.Fprint(r.out, "> ")
		if !reader.Scan() {
			return reader.Err()
		}
		quit, err := r.handleLine(ctx, reader.Text())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Warn("command failed", zap.Error(err))
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// handleLine runs one REPL line. It reports whether the session should stop.
func (r *Runner) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "exit", "quit":
		return true, nil
	}
	if strings.HasPrefix(line, "/") {
		return false, r.runCommand(ctx, line)
	}
	return false, r.send(ctx, line)
}

func (r *Runner) send(ctx context.Context, text string) error {
	r.logger.Info("message received",
		zap.String("user_id", r.userID),
		zap.String("area", string(r.area)),
		zap.Int("length", len(text)),
	)

	answer, err := r.assistant.Send(ctx, r.userID, r.area, text)
	if err != nil {
		return err
	}
	if len(answer.ReportPDF) > 0 {
		path, err := r.saveReport(answer.ReportPDF)
		if err != nil {
			r.logger.Warn("save report failed", zap.Error(err))
		} else {
			answer.Text = strings.TrimSpace(answer.Text + "\nReport saved to " + path)
		}
	}
	r.logger.Info("answer",
		zap.String("session_id", answer.SessionID),
		zap.Bool("receipt", answer.Receipt != nil),
		zap.Bool("recorded", answer.Transaction != nil),
		zap.Int("tool_calls", len(answer.ToolCalls)),
	)
	return r.writeAnswer(answer)
}

func (r *Runner) saveReport(pdf []byte) (string, error) {
	path := fmt.Sprintf("report-%s.pdf", r.now().Format("20060102-150405"))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
