package notification

import (
	"context"
	"sync"
	"time"

	"kkmall-be/internal/logger"

	"go.uber.org/zap"
)

const defaultPollInterval = 30 * time.Second

// Snapshot is the in-memory notification view published to
// subscribers.
type Snapshot struct {
	Items         []Notification
	UnreadCount   int
	TotalItems    int
	TotalPages    int
	Page          int
	Loading       bool
	Err           error
	LastCheckedAt time.Time
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Items = make([]Notification, len(s.Items))
	copy(out.Items, s.Items)
	return out
}

type storeSub struct {
	id int
	fn func(Snapshot)
}

// Store keeps the signed-in user's notifications fresh with periodic
// polling and publishes changes to subscribers.
type Store struct {
	svc      Service
	interval time.Duration

	mu     sync.Mutex
	userID string
	snap   Snapshot
	subs   []storeSub
	nextID int

	stopPoll func()
}

func NewStore(svc Service) *Store {
	return &Store{svc: svc, interval: defaultPollInterval}
}

// Start binds the store to a user, loads the first page and begins
// polling. Calling Start again rebinds and restarts the poller.
func (s *Store) Start(ctx context.Context, userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	s.Refresh(ctx)
	s.startPolling(ctx)
}

// Stop halts polling and resets the view.
func (s *Store) Stop() {
	s.stopPolling()

	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()

	s.replace(Snapshot{})
}

// Snapshot returns a copy of the current view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Subscribe registers fn for snapshot changes. Delivery is synchronous
// and in registration order; each subscriber receives its own copy.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, storeSub{id: id, fn: fn})
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

// Refresh reloads the unread count and the first page.
func (s *Store) Refresh(ctx context.Context) {
	userID := s.currentUser()
	if userID == "" {
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.Loading = true
		snap.Err = nil
	})

	count, countErr := s.svc.UnreadCount(ctx, userID)
	result, listErr := s.svc.List(ctx, userID, 1, defaultPerPage, ListFilter{})

	if countErr != nil || listErr != nil {
		err := countErr
		if err == nil {
			err = listErr
		}
		s.mutate(func(snap *Snapshot) {
			snap.Loading = false
			snap.Err = err
		})
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.Items = result.Items
		snap.UnreadCount = count
		snap.TotalItems = result.TotalItems
		snap.TotalPages = result.TotalPages
		snap.Page = 1
		snap.Loading = false
		snap.Err = nil
		snap.LastCheckedAt = time.Now()
	})
}

// LoadPage replaces the listed page, keeping the unread count.
func (s *Store) LoadPage(ctx context.Context, page int, filter ListFilter) {
	userID := s.currentUser()
	if userID == "" {
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.Loading = true
	})

	result, err := s.svc.List(ctx, userID, page, defaultPerPage, filter)
	if err != nil {
		s.mutate(func(snap *Snapshot) {
			snap.Loading = false
			snap.Err = err
		})
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.Items = result.Items
		snap.TotalItems = result.TotalItems
		snap.TotalPages = result.TotalPages
		snap.Page = result.Page
		snap.Loading = false
		snap.Err = nil
	})
}

// CheckNew compares the remote unread count with the local one and
// refreshes the whole view when new notifications arrived. Poll
// failures are logged and otherwise ignored.
func (s *Store) CheckNew(ctx context.Context) {
	userID := s.currentUser()
	if userID == "" {
		return
	}

	count, err := s.svc.UnreadCount(ctx, userID)
	if err != nil {
		logger.FromCtx(ctx).Warn("notification poll failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	previous := s.snap.UnreadCount
	s.mu.Unlock()

	if count > previous {
		s.Refresh(ctx)
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.UnreadCount = count
		snap.LastCheckedAt = time.Now()
	})
}

// MarkRead flips one notification to read remotely, then locally.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	if err := s.svc.MarkRead(ctx, id); err != nil {
		return err
	}

	s.mutate(func(snap *Snapshot) {
		for i := range snap.Items {
			if snap.Items[i].ID == id && !snap.Items[i].IsRead {
				snap.Items[i].IsRead = true
				if snap.UnreadCount > 0 {
					snap.UnreadCount--
				}
			}
		}
	})
	return nil
}

// MarkAllRead flips every unread notification remotely, then locally.
func (s *Store) MarkAllRead(ctx context.Context) error {
	userID := s.currentUser()
	if userID == "" {
		return nil
	}

	if err := s.svc.MarkAllRead(ctx, userID); err != nil {
		return err
	}

	s.mutate(func(snap *Snapshot) {
		for i := range snap.Items {
			snap.Items[i].IsRead = true
		}
		snap.UnreadCount = 0
	})
	return nil
}

// Remove deletes one notification remotely, then locally.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.svc.Remove(ctx, id); err != nil {
		return err
	}

	s.mutate(func(snap *Snapshot) {
		for i, n := range snap.Items {
			if n.ID != id {
				continue
			}
			if !n.IsRead && snap.UnreadCount > 0 {
				snap.UnreadCount--
			}
			snap.Items = append(snap.Items[:i], snap.Items[i+1:]...)
			if snap.TotalItems > 0 {
				snap.TotalItems--
			}
			break
		}
	})
	return nil
}

func (s *Store) startPolling(ctx context.Context) {
	s.stopPolling()

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	s.stopPoll = func() {
		cancel()
		<-done
	}
	s.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				s.CheckNew(pollCtx)
			}
		}
	}()
}

func (s *Store) stopPolling() {
	s.mu.Lock()
	stop := s.stopPoll
	s.stopPoll = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Store) currentUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// mutate runs fn on the live snapshot under the lock and notifies
// subscribers afterwards.
func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.snap.clone()
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap.clone())
	}
}

func (s *Store) replace(snap Snapshot) {
	s.mutate(func(cur *Snapshot) {
		*cur = snap
	})
}

func (s *Store) snapshotSubs() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	return fns
}
