package cli

import (
	"context"
	"errors"
	"fmt"

	"store_assistant/internal/profile"
)

const receiptsLimit = 10

const helpText = `Commands:
  /products [query]      list or search products
  /lowstock              products at or below their reorder level
  /photo <path>          add a product from a photo
  /receipts              recent sales
  /summary [period]      sales totals: today, yesterday, week, month or YYYY-MM-DD
  /notifications         unread notifications
  /read-all              mark all notifications read
  /profile               show the store profile
  /profile set k=v ...   update owner, store, address, phone, currency, type, threshold
  /session               current chat session
  /history               messages of the current session
  /end                   end the current session
  /logout                end every session of this user
  exit                   quit
Anything else is sent to the assistant. Sales are typed like: 3 maputi @0.50, 2 coke @0.75`

func (r *Runner) runCommand(ctx context.Context, line string) error {
	cmd, arg := splitCommand(line)
	switch cmd {
	case "/help":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "/products":
		return r.cmdProducts(ctx, arg)
	case "/lowstock":
		low, err := r.products.LowStock(ctx, r.userID)
		if err != nil {
			return err
		}
		return r.writeProducts(low, "Nothing is running low.")
	case "/photo":
		return r.cmdPhoto(ctx, arg)
	case "/receipts":
		list, err := r.ledger.List(ctx, r.userID, receiptsLimit)
		if err != nil {
			return err
		}
		return r.writeTransactions(list)
	case "/summary":
		return r.cmdSummary(ctx, arg)
	case "/notifications":
		list, err := r.notifications.ListUnread(ctx, r.userID)
		if err != nil {
			return err
		}
		return r.writeNotifications(list)
	case "/read-all":
		n, err := r.notifications.MarkAllRead(ctx, r.userID)
		if err != nil {
			return err
		}
		return r.writeStatus(fmt.Sprintf("Marked %d notification(s) read.", n))
	case "/profile":
		return r.cmdProfile(ctx, arg)
	case "/session":
		id, ok := r.assistant.CurrentSession(ctx, r.area)
		if !ok {
			return r.writeStatus(fmt.Sprintf("No active session in %s.", r.area))
		}
		return r.writeStatus(fmt.Sprintf("Session %s in %s.", id, r.area))
	case "/history":
		return r.cmdHistory(ctx)
	case "/end":
		if err := r.assistant.EndSession(ctx, r.userID, r.area); err != nil {
			return err
		}
		return r.writeStatus(fmt.Sprintf("Session in %s ended.", r.area))
	case "/logout":
		if err := r.assistant.Logout(ctx, r.userID); err != nil {
			return err
		}
		return r.writeStatus("Logged out. All sessions ended.")
	default:
		return fmt.Errorf("unknown command %s, type /help", cmd)
	}
}

func (r *Runner) cmdProducts(ctx context.Context, query string) error {
	if query == "" {
		list, err := r.products.List(ctx, r.userID)
		if err != nil {
			return err
		}
		return r.writeProducts(list, "No products yet. Add one with /photo <path>.")
	}
	list, err := r.products.Search(ctx, r.userID, query, 0)
	if err != nil {
		return err
	}
	return r.writeProducts(list, fmt.Sprintf("No products match %q.", query))
}

func (r *Runner) cmdPhoto(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: /photo <path>")
	}
	p, err := r.assistant.AnalyzePhoto(ctx, r.userID, path)
	if err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(p)
	}
	fmt.Fprintf(r.out, "Added %s at $%.2f (%s %s in stock).\n", p.Name, p.UnitPrice, formatNumber(p.Quantity), p.Unit)
	return nil
}

func (r *Runner) cmdSummary(ctx context.Context, arg string) error {
	period, err := resolvePeriod(arg, r.options, r.now())
	if err != nil {
		return err
	}
	summary, err := r.ledger.Summary(ctx, r.userID, period.From, period.To)
	if err != nil {
		return err
	}
	return r.writeSummary(period, summary)
}

func (r *Runner) cmdProfile(ctx context.Context, arg string) error {
	sub, rest := splitCommand(arg)
	if sub == "" {
		p, err := r.profiles.Get(ctx, r.userID)
		if errors.Is(err, profile.ErrNotFound) {
			return r.writeStatus("No profile yet. Use /profile set owner=... store=...")
		}
		if err != nil {
			return err
		}
		return r.writeProfile(p)
	}
	if sub != "set" {
		return fmt.Errorf("unknown profile command %q", sub)
	}

	settings, err := parseSettings(rest)
	if err != nil {
		return err
	}
	if len(settings) == 0 {
		return errors.New("usage: /profile set key=value ...")
	}

	current, err := r.profiles.Get(ctx, r.userID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		current = &profile.Profile{UserID: r.userID}
	case err != nil:
		return err
	}
	for key, value := range settings {
		if err := current.Set(key, value); err != nil {
			return err
		}
	}
	saved, err := r.profiles.Save(ctx, *current)
	if err != nil {
		return err
	}
	return r.writeProfile(saved)
}

func (r *Runner) cmdHistory(ctx context.Context) error {
	id, ok := r.assistant.CurrentSession(ctx, r.area)
	if !ok {
		return r.writeStatus("No active session.")
	}
	messages, err := r.assistant.History(ctx, id)
	if err != nil {
		return err
	}
	if r.options.JSON {
		return r.writeJSON(messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(r.out, "History is empty.")
		return nil
	}
	fmt.Fprintf(r.out, "History (%d messages):\n", len(messages))
	for i, msg := range messages {
		fmt.Fprintf(r.out, "%d) %s: %s\n", i+1, msg.Role, preview(msg.Content))
	}
	return nil
}
