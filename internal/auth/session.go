// Package auth issues access tokens and tracks the sessions they open.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/nurpe/liftcare/internal/model"
)

type EventType string

const (
	SessionUpdated EventType = "session_updated"
	SessionCleared EventType = "session_cleared"
)

type Event struct {
	Type      EventType
	Principal model.Principal
	Token     string
	ExpiresAt time.Time
}

// SessionState is a snapshot of a session.
type SessionState struct {
	Principal model.Principal
	Token     string
	ExpiresAt time.Time
	Loading   bool
}

func (s SessionState) Active() bool {
	return s.Principal.IsAuthenticated()
}

// Session holds the signed-in principal for one token. It starts empty, is
// initialized from a token, follows updated and cleared events, and notifies
// subscribers of every change.
type Session struct {
	parser *Parser

	mu     sync.RWMutex
	state  SessionState
	subs   map[int]chan Event
	nextID int
}

func NewSession(parser *Parser) *Session {
	return &Session{parser: parser, subs: make(map[int]chan Event)}
}

// Init loads the principal carried by token. An invalid token clears the session.
func (s *Session) Init(ctx context.Context, token string) error {
	s.mu.Lock()
	s.state.Loading = true
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.Apply(Event{Type: SessionCleared})
		return err
	}
	claims, err := s.parser.Parse(token)
	if err != nil {
		s.Apply(Event{Type: SessionCleared})
		return err
	}
	principal, err := claims.Principal()
	if err != nil {
		s.Apply(Event{Type: SessionCleared})
		return err
	}
	s.Apply(Event{
		Type:      SessionUpdated,
		Principal: principal,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	return nil
}

func (s *Session) Apply(ev Event) {
	s.mu.Lock()
	switch ev.Type {
	case SessionUpdated:
		s.state = SessionState{Principal: ev.Principal, Token: ev.Token, ExpiresAt: ev.ExpiresAt}
	case SessionCleared:
		s.state = SessionState{}
	default:
		s.mu.Unlock()
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Session) SignOut() {
	s.Apply(Event{Type: SessionCleared})
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel of session events and a function that cancels
// the subscription. Events are dropped for subscribers whose buffer is full.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Sessions tracks open sessions by token id and remembers signed-out tokens
// until they expire.
type Sessions struct {
	parser *Parser
	now    func() time.Time

	mu      sync.Mutex
	open    map[string]*Session
	revoked map[string]time.Time
}

func NewSessions(parser *Parser) *Sessions {
	return &Sessions{
		parser:  parser,
		now:     time.Now,
		open:    make(map[string]*Session),
		revoked: make(map[string]time.Time),
	}
}

// Open returns the session for token, initializing it on first use.
func (r *Sessions) Open(ctx context.Context, token string) (*Session, error) {
	claims, err := r.parser.Parse(token)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()

	if _, ok := r.revoked[claims.ID]; ok {
		return nil, ErrRevoked
	}
	if session, ok := r.open[claims.ID]; ok {
		return session, nil
	}
	session := NewSession(r.parser)
	if err := session.Init(ctx, token); err != nil {
		return nil, err
	}
	r.open[claims.ID] = session
	return session, nil
}

// Close signs out the session behind token. Later Open calls fail with ErrRevoked.
func (r *Sessions) Close(token string) error {
	claims, err := r.parser.Parse(token)
	if err != nil {
		return err
	}

	r.mu.Lock()
	session := r.open[claims.ID]
	delete(r.open, claims.ID)
	r.revoked[claims.ID] = claims.ExpiresAt.Time
	r.mu.Unlock()

	if session != nil {
		session.SignOut()
	}
	return nil
}

func (r *Sessions) pruneLocked() {
	now := r.now()
	for id, expiresAt := range r.revoked {
		if now.After(expiresAt) {
			delete(r.revoked, id)
		}
	}
	for id, session := range r.open {
		if now.After(session.State().ExpiresAt) {
			delete(r.open, id)
		}
	}
}
