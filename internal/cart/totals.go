package cart

import "sync"

// Totals are the derived checkout figures, a pure function of a
// Snapshot. Only lines that are both selected and available count
// toward amounts; availability gates inclusion independently of the
// selection flag.
type Totals struct {
	Subtotal       float64
	OriginalTotal  float64
	Discount       float64
	TotalItems     int
	SelectedCount  int
	AllSelected    bool
	HasUnavailable bool
}

// Compute derives totals from a snapshot. Pure and synchronous.
func Compute(snap Snapshot) Totals {
	var t Totals

	allSelected := len(snap.Lines) > 0
	for _, line := range snap.Lines {
		t.TotalItems += line.Quantity

		if !line.Selected {
			allSelected = false
		}
		if !line.Available() {
			t.HasUnavailable = true
		}

		if line.Selected && line.Available() {
			t.SelectedCount += line.Quantity
			t.Subtotal += line.UnitPrice() * float64(line.Quantity)
			t.OriginalTotal += line.ReferencePrice() * float64(line.Quantity)
		}
	}

	t.Discount = t.OriginalTotal - t.Subtotal
	t.AllSelected = allSelected
	return t
}

type feedSub struct {
	id int
	fn func(Totals)
}

// Feed recomputes totals on every snapshot change and republishes them.
// Push-based: it rides the store's synchronous subscription, so totals
// observers see changes in the same order the snapshot changed.
type Feed struct {
	mu      sync.Mutex
	current Totals
	subs    []feedSub
	nextID  int
	unbind  func()
}

func NewFeed(store *Store) *Feed {
	f := &Feed{current: Compute(store.Snapshot())}

	f.unbind = store.Subscribe(func(snap Snapshot) {
		totals := Compute(snap)

		f.mu.Lock()
		f.current = totals
		subs := make([]func(Totals), 0, len(f.subs))
		for _, sub := range f.subs {
			subs = append(subs, sub.fn)
		}
		f.mu.Unlock()

		for _, fn := range subs {
			fn(totals)
		}
	})
	return f
}

// Current returns the last computed totals.
func (f *Feed) Current() Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribe registers fn for recomputed totals; synchronous, ordered.
func (f *Feed) Subscribe(fn func(Totals)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, feedSub{id: id, fn: fn})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, sub := range f.subs {
			if sub.id == id {
				f.subs = append(f.subs[:i], f.subs[i+1:]...)
				return
			}
		}
	}
}

// Close detaches the feed from its store.
func (f *Feed) Close() {
	if f.unbind != nil {
		f.unbind()
	}
}
