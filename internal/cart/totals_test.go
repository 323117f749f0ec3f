package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCompute(t *testing.T) {
	t.Run("Empty snapshot", func(t *testing.T) {
		totals := Compute(Snapshot{})
		assert.Zero(t, totals.Subtotal)
		assert.Zero(t, totals.TotalItems)
		assert.False(t, totals.AllSelected)
	})

	t.Run("Subtotal counts selected and available lines only", func(t *testing.T) {
		inStock := testLine("c1", 2, true) // 500 each
		outOfStock := testLine("c2", 3, true)
		outOfStock.Product.InStock = false
		unselected := testLine("c3", 1, false)

		totals := Compute(Snapshot{Lines: []*Line{inStock, outOfStock, unselected}})

		assert.Equal(t, float64(1000), totals.Subtotal)
		assert.Equal(t, 2, totals.SelectedCount)
		assert.Equal(t, 6, totals.TotalItems)
		assert.True(t, totals.HasUnavailable)
	})

	t.Run("Selecting an unavailable line cannot change subtotal", func(t *testing.T) {
		available := testLine("c1", 1, true)
		unavailable := testLine("c2", 2, false)
		unavailable.Product.InStock = false

		before := Compute(Snapshot{Lines: []*Line{available, unavailable}})

		unavailable.Selected = true
		after := Compute(Snapshot{Lines: []*Line{available, unavailable}})

		assert.Equal(t, before.Subtotal, after.Subtotal)
	})

	t.Run("Discount from original price", func(t *testing.T) {
		line := testLine("c1", 2, true)
		line.Product.Price = 400
		line.Product.OriginalPrice = 500

		totals := Compute(Snapshot{Lines: []*Line{line}})
		assert.Equal(t, float64(800), totals.Subtotal)
		assert.Equal(t, float64(1000), totals.OriginalTotal)
		assert.Equal(t, float64(200), totals.Discount)
	})

	t.Run("SKU price overrides product price", func(t *testing.T) {
		line := testLine("c1", 1, true)
		line.SKU = &SKU{ID: "s1", Price: 750, Stock: 3, Active: true}

		totals := Compute(Snapshot{Lines: []*Line{line}})
		assert.Equal(t, float64(750), totals.Subtotal)
	})

	t.Run("Inactive SKU gates availability", func(t *testing.T) {
		line := testLine("c1", 1, true)
		line.SKU = &SKU{ID: "s1", Price: 750, Stock: 3, Active: false}

		totals := Compute(Snapshot{Lines: []*Line{line}})
		assert.Zero(t, totals.Subtotal)
		assert.True(t, totals.HasUnavailable)
	})

	t.Run("AllSelected requires every line selected", func(t *testing.T) {
		a := testLine("c1", 1, true)
		b := testLine("c2", 1, false)

		assert.False(t, Compute(Snapshot{Lines: []*Line{a, b}}).AllSelected)

		b.Selected = true
		assert.True(t, Compute(Snapshot{Lines: []*Line{a, b}}).AllSelected)
	})
}

func TestFeed(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListLines", mock.Anything, "u1").
		Return([]*Line{testLine("c1", 2, true)}, nil)

	store := NewStore(repo, signedInSession(t))
	defer store.Close()

	feed := NewFeed(store)
	defer feed.Close()

	assert.Equal(t, float64(1000), feed.Current().Subtotal)

	var pushed []Totals
	feed.Subscribe(func(totals Totals) { pushed = append(pushed, totals) })

	repo.On("Remove", mock.Anything, "c1").Return(nil)
	store.RemoveItem(context.Background(), "c1")

	// Recompute is synchronous with the snapshot change.
	assert.Len(t, pushed, 1)
	assert.Zero(t, pushed[0].Subtotal)
	assert.Zero(t, feed.Current().TotalItems)
}
