package cart

import "kkmall-be/internal/records"

// mapLine converts a cart_items record (with product and sku expanded)
// into a Line. Records without a resolvable product map to a line with
// a zero Product; ListLines drops those.
func mapLine(rec records.Record) *Line {
	line := &Line{
		ID:        rec.ID(),
		UserID:    rec.GetString("user"),
		ProductID: rec.GetString("product"),
		SKUID:     rec.GetString("sku"),
		Quantity:  rec.GetInt("quantity"),
		Selected:  rec.GetBool("selected"),
		Specs:     rec.GetStringMap("specs"),
	}

	if p := rec.Expand("product"); p != nil {
		line.Product = Product{
			ID:            p.ID(),
			Name:          p.GetString("name"),
			Price:         p.GetFloat("price"),
			OriginalPrice: p.GetFloat("originalPrice"),
			Image:         p.GetString("image"),
			Tags:          p.GetString("tags"),
			InStock:       p.GetBool("inStock"),
		}
	}

	if s := rec.Expand("sku"); s != nil {
		line.SKU = &SKU{
			ID:     s.ID(),
			Price:  s.GetFloat("price"),
			Stock:  s.GetInt("stock"),
			Active: s.GetBool("status"),
			Specs:  s.GetStringMap("specs"),
		}
	}

	return line
}
