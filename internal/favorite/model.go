package favorite

import "kkmall-be/internal/records"

// Favorite is a user's favorites record. The store keeps at most one
// record per user; its product_id relation holds every favorited
// product.
type Favorite struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	ProductIDs []string  `json:"productIds"`
	BrandID    string    `json:"brandId,omitempty"`
	Products   []Product `json:"products,omitempty"`
}

// Product is the catalog detail expanded on a favorites record.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Image         string  `json:"image"`
	Brand         string  `json:"brand"`
	InStock       bool    `json:"inStock"`
}

func mapFavorite(rec records.Record) Favorite {
	fav := Favorite{
		ID:         rec.ID(),
		UserID:     rec.GetString("user"),
		ProductIDs: productIDs(rec),
		BrandID:    rec.GetString("brands_id"),
	}

	for _, p := range rec.ExpandAll("product_id") {
		fav.Products = append(fav.Products, Product{
			ID:            p.ID(),
			Name:          p.GetString("name"),
			Price:         p.GetFloat("price"),
			OriginalPrice: p.GetFloat("originalPrice"),
			Image:         p.GetString("image"),
			Brand:         p.GetString("brand"),
			InStock:       p.GetBool("inStock"),
		})
	}

	return fav
}

// productIDs reads the product_id relation, tolerating older records
// that stored a single id string instead of an array.
func productIDs(rec records.Record) []string {
	if ids := rec.GetStringSlice("product_id"); len(ids) > 0 {
		return ids
	}
	if id := rec.GetString("product_id"); id != "" {
		return []string{id}
	}
	return nil
}
