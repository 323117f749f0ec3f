package cart

import (
	"context"
	"sync"

	"kkmall-be/internal/logger"
	"kkmall-be/internal/user"

	"go.uber.org/zap"
)

// Snapshot is the in-memory cart view published to subscribers. It is
// replaced wholesale on Load and mutated optimistically on user
// actions; the matching remote writes run in the background and are
// never rolled back on failure. Load is the only resynchronization
// path.
type Snapshot struct {
	Lines   []*Line
	Loading bool
	Err     error
}

type storeSub struct {
	id int
	fn func(Snapshot)
}

// Store is the single authoritative cart view for the session's user.
// It is explicitly constructed and injected; all mutations funnel
// through its methods, which keeps a single-writer discipline over the
// snapshot.
type Store struct {
	repo    Repository
	session *user.Session

	mu     sync.Mutex
	snap   Snapshot
	subs   []storeSub
	nextID int

	// bg tracks in-flight background writes so tests and shutdown can
	// drain them.
	bg     sync.WaitGroup
	unbind func()
}

func NewStore(repo Repository, session *user.Session) *Store {
	s := &Store{repo: repo, session: session}

	if session != nil {
		s.unbind = session.Subscribe(func(u *user.User) {
			if u != nil {
				s.Load(context.Background())
			} else {
				// Nothing to tell the server on sign-out; the remote
				// rows persist and only the local view resets.
				s.replace(Snapshot{})
			}
		})

		// Pick up a session that signed in before the store existed.
		if session.Current() != nil {
			s.Load(context.Background())
		}
	}
	return s
}

// Close detaches the store from session transitions and drains
// background writes.
func (s *Store) Close() {
	if s.unbind != nil {
		s.unbind()
	}
	s.bg.Wait()
}

// Snapshot returns a copy of the current cart view.
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

// Load replaces the snapshot wholesale from the repository. On error
// the snapshot becomes empty with the error recorded; Load itself
// never fails.
func (s *Store) Load(ctx context.Context) {
	u := s.currentUser()
	if u == nil {
		s.replace(Snapshot{})
		return
	}

	s.mutate(func(snap *Snapshot) {
		snap.Loading = true
		snap.Err = nil
	})

	lines, err := s.repo.ListLines(ctx, u.ID)
	if err != nil {
		logger.FromCtx(ctx).Error("cart load failed",
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
		s.replace(Snapshot{Err: err})
		return
	}

	s.replace(Snapshot{Lines: lines})
}

// AddItem adds quantity of a product (optionally a specific SKU) to
// the cart. The merge-vs-create decision lives server side, so this is
// the one mutation that is not optimistic: it reloads afterwards to
// pick up the authoritative result.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int, skuID string, specs map[string]string) error {
	u := s.currentUser()
	if u == nil {
		return ErrAuthRequired
	}

	_, err := s.repo.AddLine(ctx, AddLineParams{
		UserID:    u.ID,
		ProductID: productID,
		Quantity:  quantity,
		SKUID:     skuID,
		Specs:     specs,
	})
	if err != nil {
		return err
	}

	s.Load(ctx)
	return nil
}

// UpdateQuantity applies a signed delta optimistically. A delta that
// would exceed the line's stock ceiling is silently ignored (the
// ceiling is advisory); a result of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, delta int) {
	var (
		newQuantity int
		apply       bool
		remove      bool
	)

	s.mutate(func(snap *Snapshot) {
		line := snap.find(lineID)
		if line == nil {
			return
		}

		q := line.Quantity + delta
		switch {
		case q <= 0:
			remove = true
		case q > line.StockCeiling():
			// advisory cap, no error surfaced
		default:
			line.Quantity = q
			newQuantity = q
			apply = true
		}
	})

	if remove {
		s.RemoveItem(ctx, lineID)
		return
	}
	if apply {
		s.background(ctx, "update quantity", lineID, func(ctx context.Context) error {
			_, err := s.repo.SetQuantity(ctx, lineID, newQuantity)
			return err
		})
	}
}

// SetQuantity writes an absolute quantity, clamped to the line's stock
// ceiling. Zero or less removes the line instead.
func (s *Store) SetQuantity(ctx context.Context, lineID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, lineID)
		return
	}

	var (
		final int
		apply bool
	)

	s.mutate(func(snap *Snapshot) {
		line := snap.find(lineID)
		if line == nil {
			return
		}

		final = quantity
		if ceiling := line.StockCeiling(); final > ceiling {
			final = ceiling
		}
		line.Quantity = final
		apply = true
	})

	if apply {
		s.background(ctx, "set quantity", lineID, func(ctx context.Context) error {
			_, err := s.repo.SetQuantity(ctx, lineID, final)
			return err
		})
	}
}

// RemoveItem deletes a line. The local removal happens on issuance of
// the remote delete, not on its completion.
func (s *Store) RemoveItem(ctx context.Context, lineID string) {
	s.mutate(func(snap *Snapshot) {
		for i, line := range snap.Lines {
			if line.ID == lineID {
				snap.Lines = append(snap.Lines[:i], snap.Lines[i+1:]...)
				return
			}
		}
	})

	s.background(ctx, "remove line", lineID, func(ctx context.Context) error {
		return s.repo.Remove(ctx, lineID)
	})
}

// RemoveSelected deletes every selected line with independent remote
// deletes, then reloads. Partial failure leaves the completed deletes
// in place; the first error is returned.
func (s *Store) RemoveSelected(ctx context.Context) error {
	var ids []string
	s.mu.Lock()
	for _, line := range s.snap.Lines {
		if line.Selected {
			ids = append(ids, line.ID)
		}
	}
	s.mu.Unlock()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.repo.Remove(ctx, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	s.Load(ctx)
	return firstErr
}

// ToggleSelect flips one line's selection optimistically.
func (s *Store) ToggleSelect(ctx context.Context, lineID string) {
	var (
		selected bool
		apply    bool
	)

	s.mutate(func(snap *Snapshot) {
		if line := snap.find(lineID); line != nil {
			line.Selected = !line.Selected
			selected = line.Selected
			apply = true
		}
	})

	if apply {
		s.background(ctx, "toggle select", lineID, func(ctx context.Context) error {
			_, err := s.repo.SetSelected(ctx, lineID, selected)
			return err
		})
	}
}

// SetAllSelected flips every line optimistically, with one remote
// write per line (there is no batch endpoint).
func (s *Store) SetAllSelected(ctx context.Context, selected bool) {
	var ids []string

	s.mutate(func(snap *Snapshot) {
		for _, line := range snap.Lines {
			line.Selected = selected
			ids = append(ids, line.ID)
		}
	})

	for _, id := range ids {
		s.background(ctx, "set selected", id, func(ctx context.Context) error {
			_, err := s.repo.SetSelected(ctx, id, selected)
			return err
		})
	}
}

// ClearCart removes every remote line, then resets the local view. A
// remote failure leaves the snapshot untouched so the partial state
// stays visible; no-op when signed out.
func (s *Store) ClearCart(ctx context.Context) error {
	u := s.currentUser()
	if u == nil {
		return nil
	}

	if err := s.repo.ClearAll(ctx, u.ID); err != nil {
		return err
	}

	s.replace(Snapshot{})
	return nil
}

// ---------- internals ----------

func (s *Store) currentUser() *user.User {
	if s.session == nil {
		return nil
	}
	return s.session.Current()
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

// background issues a remote write without blocking the caller.
// Failures are logged and the local snapshot is not reverted.
func (s *Store) background(ctx context.Context, op, lineID string, fn func(context.Context) error) {
	log := logger.FromCtx(ctx)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := fn(context.WithoutCancel(ctx)); err != nil {
			log.Error("cart remote write failed",
				zap.String("op", op),
				zap.String("line_id", lineID),
				zap.Error(err),
			)
		}
	}()
}

func (s *Store) snapshotSubs() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	return fns
}

func (snap Snapshot) clone() Snapshot {
	out := Snapshot{Loading: snap.Loading, Err: snap.Err}
	if len(snap.Lines) > 0 {
		out.Lines = make([]*Line, len(snap.Lines))
		for i, line := range snap.Lines {
			cp := *line
			cp.Specs = copySpecs(line.Specs)
			if line.SKU != nil {
				sku := *line.SKU
				sku.Specs = copySpecs(line.SKU.Specs)
				cp.SKU = &sku
			}
			out.Lines[i] = &cp
		}
	}
	return out
}

func copySpecs(specs map[string]string) map[string]string {
	if specs == nil {
		return nil
	}
	out := make(map[string]string, len(specs))
	for k, v := range specs {
		out[k] = v
	}
	return out
}

func (snap *Snapshot) find(lineID string) *Line {
	for _, line := range snap.Lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}
