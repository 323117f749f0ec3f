package cart

import (
	"testing"

	"kkmall-be/internal/records"

	"github.com/stretchr/testify/assert"
)

func TestMapLine(t *testing.T) {
	rec := records.Record{
		"id":       "c1",
		"user":     "u1",
		"product":  "P1",
		"sku":      "s1",
		"quantity": float64(2),
		"selected": true,
		"specs":    map[string]any{"size": "M"},
		"expand": map[string]any{
			"product": map[string]any{
				"id": "P1", "name": "Matcha Roll", "price": float64(1200),
				"originalPrice": float64(1500), "inStock": true, "image": "roll.webp",
			},
			"sku": map[string]any{
				"id": "s1", "price": float64(1100), "stock": float64(4),
				"status": true, "specs": map[string]any{"size": "M"},
			},
		},
	}

	line := mapLine(rec)

	assert.Equal(t, "c1", line.ID)
	assert.Equal(t, "u1", line.UserID)
	assert.Equal(t, "s1", line.SKUID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, map[string]string{"size": "M"}, line.Specs)
	assert.Equal(t, "Matcha Roll", line.Product.Name)

	// SKU-derived figures win over the product's.
	assert.Equal(t, float64(1100), line.UnitPrice())
	assert.Equal(t, float64(1500), line.ReferencePrice())
	assert.Equal(t, 4, line.StockCeiling())
	assert.True(t, line.Available())
}

func TestLineDefaults(t *testing.T) {
	line := &Line{
		ID:       "c2",
		Quantity: 1,
		Product:  Product{ID: "P2", Price: 300, InStock: true},
	}

	assert.Equal(t, float64(300), line.UnitPrice())
	assert.Equal(t, float64(300), line.ReferencePrice(), "missing original price falls back to unit price")
	assert.Equal(t, defaultStockCeiling, line.StockCeiling())
	assert.True(t, line.Available())

	line.Product.InStock = false
	assert.False(t, line.Available())
}
