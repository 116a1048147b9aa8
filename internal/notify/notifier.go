package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LineItem is one booked treatment in a checkout.
type LineItem struct {
	SpaTitle  string `json:"spa_title"`
	Treatment string `json:"treatment"`
	Quantity  int    `json:"quantity"`
}

// Recipient identifies who receives the confirmation.
type Recipient struct {
	Name  string
	Email string
}

// Notifier dispatches booking confirmations in the background.
type Notifier struct {
	mailer  Mailer
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier creates a Notifier. A nil mailer disables delivery; dispatch
// calls become logged no-ops so checkout works without mail configured.
func NewNotifier(mailer Mailer, timeout time.Duration) *Notifier {
	return &Notifier{mailer: mailer, timeout: timeout}
}

// BookingConfirmation sends an order summary to the recipient. It returns
// immediately; delivery happens on a background goroutine with its own
// timeout, detached from the request context.
func (n *Notifier) BookingConfirmation(to Recipient, items []LineItem) {
	if n.mailer == nil {
		slog.Debug("notify: mail disabled, skipping confirmation", "to", to.Email)
		return
	}

	msg := Message{
		To:      to.Email,
		Subject: "Your spa booking confirmation",
		Body:    confirmationBody(to, items),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mailer.Send(ctx, msg); err != nil {
			slog.Error("notify: booking confirmation failed",
				"to", to.Email,
				"items", len(items),
				"error", err,
			)
			return
		}
		slog.Info("notify: booking confirmation sent", "to", to.Email, "items", len(items))
	}()
}

// Wait blocks until all in-flight deliveries finish. Used during shutdown.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// confirmationBody renders the plain-text order summary.
func confirmationBody(to Recipient, items []LineItem) string {
	var b strings.Builder

	name := to.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your booking. Your order:\n\n", name)

	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		fmt.Fprintf(&b, "  - %s at %s x%d\n", item.Treatment, item.SpaTitle, qty)
	}

	b.WriteString("\nWe look forward to seeing you.\n")
	return b.String()
}
