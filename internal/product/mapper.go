package product

import "kkmall-be/internal/records"

func mapProduct(rec records.Record) Product {
	return Product{
		ID:            rec.ID(),
		Name:          rec.GetString("name"),
		NameJA:        rec.GetString("name_ja"),
		Price:         rec.GetFloat("price"),
		OriginalPrice: rec.GetFloat("originalPrice"),
		Discount:      rec.GetFloat("discount"),
		Rating:        rec.GetFloat("rating"),
		Reviews:       rec.GetInt("reviews"),
		Image:         rec.GetString("image"),
		Images:        rec.GetStringSlice("images"),
		Description:   rec.GetString("description"),
		IsNew:         rec.GetBool("isNew"),
		IsHot:         rec.GetBool("isHot"),
		InStock:       rec.GetBool("inStock"),
		Stock:         rec.GetInt("stock"),
		Brand:         rec.GetString("brand"),
		Tags:          rec.GetStringSlice("tags"),
		CategoryID:    rec.GetString("category_id"),
		SubcategoryID: rec.GetString("subcategory_id"),
		Specs:         rec.GetStringMap("specs"),
	}
}

func mapCategory(rec records.Record) Category {
	cat := Category{
		ID:   rec.ID(),
		Name: rec.GetString("name"),
		Icon: rec.GetString("icon"),
	}

	for _, child := range rec.ExpandAll("children") {
		cat.Children = append(cat.Children, mapCategory(child))
	}
	return cat
}
