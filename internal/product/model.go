package product

// Product is one catalog record. Prices are JPY, so whole numbers in
// practice, but the record store serializes all numbers as float64.
type Product struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	NameJA        string            `json:"name_ja"`
	Price         float64           `json:"price"`
	OriginalPrice float64           `json:"originalPrice"`
	Discount      float64           `json:"discount"`
	Rating        float64           `json:"rating"`
	Reviews       int               `json:"reviews"`
	Image         string            `json:"image"`
	Images        []string          `json:"images"`
	Description   string            `json:"description"`
	IsNew         bool              `json:"isNew"`
	IsHot         bool              `json:"isHot"`
	InStock       bool              `json:"inStock"`
	Stock         int               `json:"stock"`
	Brand         string            `json:"brand"`
	Tags          []string          `json:"tags"`
	CategoryID    string            `json:"categoryId"`
	SubcategoryID string            `json:"subcategoryId,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
}

// Category is a catalog category, optionally with child categories.
type Category struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Icon     string     `json:"icon"`
	Children []Category `json:"children,omitempty"`
}

// Filter narrows a catalog listing. Zero values mean "not filtered";
// the tri-state flags use pointers so false is still a filter.
type Filter struct {
	CategoryID    string
	SubcategoryID string
	MinPrice      *float64
	MaxPrice      *float64
	Brands        []string
	InStock       *bool
	IsNew         *bool
	IsHot         *bool
	Search        string
}

// Sort orders a catalog listing.
type Sort struct {
	Field string // created, price, rating or reviews
	Desc  bool
}

// ListResult is one page of the catalog.
type ListResult struct {
	Items      []Product `json:"items"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}
