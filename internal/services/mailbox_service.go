package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
	"github.com/justsurfingit/job-tracker-client/internal/oauthflow"
	"go.uber.org/zap"
)

var ErrConnectInProgress = errors.New("a connection attempt for this mailbox is already running")

type MailboxAPI interface {
	MailboxStatus(ctx context.Context) (dtos.MailboxStatus, error)
	DisconnectMailbox(ctx context.Context, provider string) error
}

type Connector interface {
	Connect(ctx context.Context, provider oauthflow.Provider) (oauthflow.Result, error)
}

type MailboxState struct {
	Connected bool
	Email     string
	// Verified is false while Connected only rests on a closed popup.
	Verified bool
}

type ConnectResult struct {
	oauthflow.Result
	// Confirmed reports whether the backend agrees the mailbox is connected.
	Confirmed bool
}

// MailboxService tracks which mailboxes are connected and runs connection
// attempts one at a time per provider.
type MailboxService struct {
	API  MailboxAPI
	Flow Connector
	log  *zap.Logger

	mu         sync.Mutex
	state      map[oauthflow.Provider]MailboxState
	connecting map[oauthflow.Provider]bool
}

func NewMailboxService(api MailboxAPI, flow Connector, log *zap.Logger) *MailboxService {
	return &MailboxService{
		API:        api,
		Flow:       flow,
		log:        log,
		state:      make(map[oauthflow.Provider]MailboxState),
		connecting: make(map[oauthflow.Provider]bool),
	}
}

// States returns a copy of the known connection state.
func (s *MailboxService) States() map[oauthflow.Provider]MailboxState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[oauthflow.Provider]MailboxState, len(s.state))
	for p, st := range s.state {
		out[p] = st
	}
	return out
}

// Refresh replaces the local state with the backend's view.
func (s *MailboxService) Refresh(ctx context.Context) (map[oauthflow.Provider]MailboxState, error) {
	status, err := s.API.MailboxStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mailbox status: %w", err)
	}

	s.mu.Lock()
	for _, p := range oauthflow.Providers {
		st := status[string(p)]
		s.state[p] = MailboxState{Connected: st.Connected, Email: st.Email, Verified: true}
	}
	s.mu.Unlock()
	return s.States(), nil
}

// Connect runs the consent handshake for provider. When the popup closes
// without a callback the backend is asked whether the grant landed; if it
// cannot be asked the optimistic result stands, unverified.
func (s *MailboxService) Connect(ctx context.Context, provider oauthflow.Provider) (ConnectResult, error) {
	s.mu.Lock()
	if s.connecting[provider] {
		s.mu.Unlock()
		return ConnectResult{}, ErrConnectInProgress
	}
	s.connecting[provider] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.connecting, provider)
		s.mu.Unlock()
	}()

	res, err := s.Flow.Connect(ctx, provider)
	if err != nil {
		// state stays as it was
		return ConnectResult{Result: res}, err
	}

	switch res.Outcome {
	case oauthflow.OutcomeConnected:
		s.set(provider, MailboxState{Connected: true, Email: res.Email, Verified: true})
		return ConnectResult{Result: res, Confirmed: true}, nil

	case oauthflow.OutcomeClosedUnconfirmed:
		states, err := s.Refresh(ctx)
		if err != nil {
			s.log.Warn("Could not verify mailbox after the window closed",
				zap.String("provider", string(provider)), zap.Error(err))
			s.set(provider, MailboxState{Connected: true, Verified: false})
			return ConnectResult{Result: res}, nil
		}
		confirmed := states[provider].Connected
		if !confirmed {
			s.log.Info("Consent window closed but the mailbox is not connected", zap.String("provider", string(provider)))
		}
		res.Email = states[provider].Email
		return ConnectResult{Result: res, Confirmed: confirmed}, nil
	}
	return ConnectResult{Result: res}, nil
}

func (s *MailboxService) Disconnect(ctx context.Context, provider oauthflow.Provider) error {
	if err := s.API.DisconnectMailbox(ctx, string(provider)); err != nil {
		return fmt.Errorf("failed to disconnect %s: %w", provider.Title(), err)
	}
	s.set(provider, MailboxState{Verified: true})
	s.log.Info("Mailbox disconnected", zap.String("provider", string(provider)))
	return nil
}

func (s *MailboxService) set(p oauthflow.Provider, st MailboxState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[p] = st
}
