package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"store_assistant/internal/assistant"
	"store_assistant/internal/catalog"
	"store_assistant/internal/config"
	"store_assistant/internal/ledger"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/session"
	"store_assistant/internal/store"

	"go.uber.org/zap"
)

type echoResponder struct{}

func (echoResponder) Respond(_ context.Context, p assistant.Prompt) (assistant.Reply, error) {
	return assistant.Reply{Text: "echo: " + p.Text}, nil
}

func (echoResponder) Forget(string) {}

func newTestRunner(t *testing.T, opts Options) (*Runner, *bytes.Buffer) {
	t.Helper()
	db, err := store.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	products := catalog.NewService(catalog.NewSQLiteRepository(db), nil)
	notifier := notifications.NewService(notifications.NewSQLiteRepository(db), nil)
	profiles := profile.NewService(profile.NewSQLiteRepository(db), nil)
	ledgerSvc := ledger.NewService(ledger.NewSQLiteRepository(db), products, notifier, nil)
	svc := assistant.NewService(assistant.Deps{
		Sessions:      session.NewManager(session.NewSQLiteRepository(db), session.NewMemoryCache(), nil),
		Messages:      assistant.NewSQLiteMessageRepository(db),
		Responder:     echoResponder{},
		Products:      products,
		Ledger:        ledgerSvc,
		Profiles:      profiles,
		Notifications: notifier,
	})

	runner, err := NewRunner(opts, config.Config{UserID: "u1", Area: "main"}, svc, products, ledgerSvc, notifier, profiles, zap.NewNop())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	out := &bytes.Buffer{}
	runner.out = out
	if _, err := products.Add(context.Background(), catalog.Product{UserID: "u1", Name: "Bar Soap", UnitPrice: 1.20, Quantity: 5, ReorderLevel: 4}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return runner, out
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions([]string{"-user", "u9", "-area", "misc", "-json", "-timeout", "5", "-backend", "LLM", "2 coke @0.75"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.UserID != "u9" || opts.Area != "misc" || !opts.JSON || opts.Timeout != 5*time.Second || opts.Backend != config.BackendLLM {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.Query != "2 coke @0.75" {
		t.Fatalf("unexpected query %q", opts.Query)
	}

	if _, err := ParseOptions([]string{"a", "b"}, io.Discard); err == nil {
		t.Fatalf("expected error for two messages")
	}
	if _, err := ParseOptions([]string{"-backend", "magic"}, io.Discard); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := ParseOptions([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestOptionsApply(t *testing.T) {
	base := config.Config{UserID: "env-user", Area: "main", Timeout: time.Minute, AssistantBackend: config.BackendInference}
	got := Options{UserID: "flag-user", Timeout: 5 * time.Second, Debug: true}.Apply(base)
	if got.UserID != "flag-user" || got.Area != "main" || got.Timeout != 5*time.Second || !got.Debug {
		t.Fatalf("unexpected config %+v", got)
	}
	if got.AssistantBackend != config.BackendInference {
		t.Fatalf("backend should be untouched, got %q", got.AssistantBackend)
	}
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.Local)

	today, err := resolvePeriod("", Options{}, now)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !today.From.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)) || !today.To.Equal(now) {
		t.Fatalf("unexpected today range %+v", today)
	}

	yesterday, _ := resolvePeriod("yesterday", Options{}, now)
	if yesterday.From.Day() != 13 || yesterday.To.Day() != 13 || yesterday.To.Hour() != 23 {
		t.Fatalf("unexpected yesterday range %+v", yesterday)
	}

	month, _ := resolvePeriod("month", Options{}, now)
	if month.From.Day() != 1 || month.From.Month() != time.March {
		t.Fatalf("unexpected month range %+v", month)
	}

	day, err := resolvePeriod("2025-02-01", Options{}, now)
	if err != nil || day.From.Month() != time.February {
		t.Fatalf("unexpected day range %+v (%v)", day, err)
	}

	if _, err := resolvePeriod("fortnight", Options{}, now); err == nil {
		t.Fatalf("expected error for unknown period")
	}

	flags, err := resolvePeriod("today", Options{From: "2025-03-01", To: "2025-03-07"}, now)
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if flags.From.Day() != 1 || flags.To.Day() != 7 {
		t.Fatalf("expected flags to win, got %+v", flags)
	}
	if _, err := resolvePeriod("", Options{From: "2025-03-07", To: "2025-03-01"}, now); err == nil {
		t.Fatalf("expected error for reversed flags")
	}
}

func TestParseSettings(t *testing.T) {
	got, err := parseSettings(`store="Rudo's Tuckshop" owner=Rudo threshold=3`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["store"] != "Rudo's Tuckshop" || got["owner"] != "Rudo" || got["threshold"] != "3" {
		t.Fatalf("unexpected settings %v", got)
	}
	if _, err := parseSettings("store"); err == nil {
		t.Fatalf("expected error without '='")
	}
	if _, err := parseSettings(`store="open`); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestREPLFlow(t *testing.T) {
	runner, out := newTestRunner(t, Options{})
	runner.in = strings.NewReader(strings.Join([]string{
		"/profile set owner=Rudo store=\"Rudo's Tuckshop\"",
		"/products soap",
		"2 soap @1.20",
		"/receipts",
		"/notifications",
		"how are sales?",
		"/session",
		"/history",
		"/end",
		"/session",
		"/bogus",
		"exit",
		"never reached",
	}, "\n"))

	if err := runner.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Store: Rudo's Tuckshop",
		"1) Bar Soap, $1.20, 5 each",
		"Sale recorded.",
		"1 item(s)  $2.76  by Rudo",
		"[low_stock] Low stock: Bar Soap is down to 3 each",
		"echo: how are sales?",
		"History (",
		"Session in main ended.",
		"No active session in main.",
		"unknown command /bogus",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "never reached") {
		t.Fatalf("input after exit was processed")
	}
}

func TestOneShotJSON(t *testing.T) {
	runner, out := newTestRunner(t, Options{JSON: true, Query: "/lowstock"})
	if err := runner.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "[") {
		t.Fatalf("expected a JSON array, got %q", out.String())
	}
}

func TestExecuteRequiresUser(t *testing.T) {
	runner := &Runner{}
	if err := runner.Execute(); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
}
