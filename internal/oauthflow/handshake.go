// Package oauthflow connects a mailbox by walking the user through the
// provider's consent screen in a popup window and waiting for the callback.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"go.uber.org/zap"
)

type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
)

var Providers = []Provider{ProviderGmail, ProviderOutlook}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown mailbox provider %q (want gmail or outlook)", s)
}

func (p Provider) Title() string {
	switch p {
	case ProviderGmail:
		return "Gmail"
	case ProviderOutlook:
		return "Outlook"
	}
	return string(p)
}

type Outcome int

const (
	OutcomeConnected Outcome = iota + 1
	OutcomeFailed
	// OutcomeClosedUnconfirmed means the popup was closed without a message.
	// It is reported as success but the server has not confirmed it.
	OutcomeClosedUnconfirmed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConnected:
		return "connected"
	case OutcomeFailed:
		return "failed"
	case OutcomeClosedUnconfirmed:
		return "closed-unconfirmed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type Result struct {
	Provider Provider
	Outcome  Outcome
	Email    string
	Message  string
}

// ErrPopupBlocked is returned when the consent window could not be shown.
var ErrPopupBlocked = errors.New("could not open the sign-in window; allow popups or check the browser setting and try again")

// CallbackError carries the message of an oauth-error callback.
type CallbackError struct {
	Provider Provider
	Message  string
}

func (e *CallbackError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "authorization was not completed"
	}
	return fmt.Sprintf("%s connection failed: %s", e.Provider.Title(), msg)
}

// AuthURLSource hands out provider consent URLs. *api.Client satisfies it.
type AuthURLSource interface {
	MailboxAuthURL(ctx context.Context, provider, redirectURI, state string) (string, error)
}

// Messages is where callback results arrive. *handlers.CallbackServer
// satisfies it.
type Messages interface {
	Subscribe(fn func(dtos.CallbackMessage)) (unsubscribe func())
	CallbackURL() string
}

// Window is an open popup.
type Window interface {
	Closed() bool
	Close() error
}

type Opener interface {
	Open(ctx context.Context, url string) (Window, error)
}

const DefaultPollInterval = 500 * time.Millisecond

type Handshake struct {
	urls     AuthURLSource
	messages Messages
	opener   Opener
	log      *zap.Logger
	interval time.Duration
	newState func() string
}

type Option func(*Handshake)

// WithPollInterval sets how often the popup is checked for closure.
func WithPollInterval(d time.Duration) Option {
	return func(h *Handshake) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithStateFunc replaces the state nonce generator.
func WithStateFunc(fn func() string) Option {
	return func(h *Handshake) { h.newState = fn }
}

func NewHandshake(urls AuthURLSource, messages Messages, opener Opener, log *zap.Logger, opts ...Option) *Handshake {
	h := &Handshake{
		urls:     urls,
		messages: messages,
		opener:   opener,
		log:      log,
		interval: DefaultPollInterval,
		newState: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connect runs one connection attempt. It returns when a callback message
// arrives, the popup is closed, or ctx ends, whichever happens first. The
// subscription, the poll ticker and the window are released before it
// returns.
//
// Only callbacks echoing this attempt's state nonce are accepted. Anything
// else is ignored, and the attempt then ends through the window closing.
//
// An oauth-error callback returns both a Result with OutcomeFailed and a
// *CallbackError. Failing to get the consent URL returns the backend error
// untouched.
func (h *Handshake) Connect(ctx context.Context, provider Provider) (Result, error) {
	state := h.newState()
	authURL, err := h.urls.MailboxAuthURL(ctx, string(provider), h.messages.CallbackURL(), state)
	if err != nil {
		return Result{}, err
	}

	win, err := h.opener.Open(ctx, authURL)
	if err != nil || win == nil || win.Closed() {
		if win != nil {
			_ = win.Close()
		}
		h.log.Warn("Consent window did not open", zap.String("provider", string(provider)), zap.Error(err))
		if err != nil {
			return Result{}, fmt.Errorf("%w (%v)", ErrPopupBlocked, err)
		}
		return Result{}, ErrPopupBlocked
	}
	defer func() {
		if err := win.Close(); err != nil {
			h.log.Debug("Closing consent window", zap.Error(err))
		}
	}()

	inbox := make(chan dtos.CallbackMessage, 1)
	unsubscribe := h.messages.Subscribe(func(m dtos.CallbackMessage) {
		if !strings.EqualFold(m.Provider, string(provider)) {
			return
		}
		// a callback without our nonce is not ours, whatever it claims
		if m.State != state {
			return
		}
		select {
		case inbox <- m:
		default: // first message wins
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.log.Debug("Waiting for consent", zap.String("provider", string(provider)))
	for {
		select {
		case m := <-inbox:
			return h.finish(provider, m)
		case <-ticker.C:
			if !win.Closed() {
				continue
			}
			// the callback page may have posted just before closing itself
			select {
			case m := <-inbox:
				return h.finish(provider, m)
			default:
			}
			h.log.Info("Consent window closed without a callback", zap.String("provider", string(provider)))
			return Result{Provider: provider, Outcome: OutcomeClosedUnconfirmed}, nil
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

func (h *Handshake) finish(provider Provider, m dtos.CallbackMessage) (Result, error) {
	if m.Type == dtos.MessageOAuthSuccess {
		h.log.Info("Mailbox connected", zap.String("provider", string(provider)))
		return Result{Provider: provider, Outcome: OutcomeConnected, Email: m.Email}, nil
	}
	h.log.Warn("Mailbox connection failed", zap.String("provider", string(provider)), zap.String("message", m.Message))
	res := Result{Provider: provider, Outcome: OutcomeFailed, Message: m.Message}
	return res, &CallbackError{Provider: provider, Message: m.Message}
}
