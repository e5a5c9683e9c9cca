package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/containrrr/shoutrrr"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// SendFunc delivers message to a single shoutrrr URL.
type SendFunc func(rawURL, message string) error

// Notifier fans a message out to every configured URL.
type Notifier struct {
	urls []string
	send SendFunc
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithSender replaces shoutrrr.Send, mostly for tests.
func WithSender(send SendFunc) Option {
	return func(n *Notifier) {
		if send != nil {
			n.send = send
		}
	}
}

// New creates a notifier for urls. An empty list yields a notifier that does nothing.
func New(urls []string, opts ...Option) *Notifier {
	n := &Notifier{
		urls: append([]string(nil), urls...),
		send: shoutrrr.Send,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Enabled reports whether any URL is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.urls) > 0
}

// Notify sends message to all URLs and joins the failures.
// A failing URL does not stop delivery to the rest.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if !n.Enabled() {
		return nil
	}

	var errs []error

	for _, rawURL := range n.urls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := n.send(rawURL, message); err != nil {
			service := redact(rawURL)
			logger.WarnKV(ctx, "Notification failed", "service", service, "error", err)
			errs = append(errs, fmt.Errorf("notify %s: %w", service, err))

			continue
		}

		logger.DebugKV(ctx, "Notification sent", "service", redact(rawURL))
	}

	return errors.Join(errs...)
}

// redact keeps only the scheme and host, service URLs carry tokens.
func redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return "<invalid url>"
	}

	return parsed.Scheme + "://" + parsed.Host
}
