package user

import (
	"context"
	"sync"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/records"

	"go.uber.org/zap"
)

// Session holds the current signed-in user and notifies subscribers on
// every transition. It is constructed per process and injected into the
// stores that care about auth state; there is no package-level
// singleton.
type Session struct {
	client *records.Client

	mu      sync.Mutex
	current *User
	subs    []sessionSub
	nextID  int
}

type sessionSub struct {
	id int
	fn func(*User)
}

func NewSession(client *records.Client) *Session {
	return &Session{client: client}
}

// Current returns the signed-in user, or nil.
func (s *Session) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for sign-in/sign-out transitions. Delivery is
// synchronous and in registration order. The returned func removes the
// subscription.
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, sessionSub{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SignIn authenticates against the record store's users collection and
// publishes the new user to subscribers.
func (s *Session) SignIn(ctx context.Context, identity, password string) (*User, error) {
	res, err := s.client.Collection("users").AuthWithPassword(ctx, identity, password)
	if err != nil {
		logger.FromCtx(ctx).Warn("sign-in failed",
			zap.String("identity", identity),
			zap.Error(err),
		)
		return nil, err
	}

	u := mapUser(res.Record)

	s.mu.Lock()
	s.current = u
	subs := s.snapshotSubs()
	s.mu.Unlock()

	logger.FromCtx(ctx).Info("user signed in", zap.String("user_id", u.ID))

	for _, fn := range subs {
		fn(u)
	}
	return u, nil
}

// SignOut clears the session locally. The record store keeps its rows;
// only the client-side view resets.
func (s *Session) SignOut() {
	s.client.ClearToken()

	s.mu.Lock()
	s.current = nil
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

func (s *Session) snapshotSubs() []func(*User) {
	fns := make([]func(*User), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	return fns
}
