package cart

// defaultStockCeiling is the advisory quantity cap for lines without a
// SKU; real-time stock is not guaranteed fresh, so this is a UX limit,
// not a transactional one.
const defaultStockCeiling = 999

// Product is the catalog detail resolved inline on a cart line.
type Product struct {
	ID            string
	Name          string
	Price         float64
	OriginalPrice float64
	Image         string
	Tags          string
	InStock       bool
}

// SKU is the purchasable variant a line points at, when the product
// has variants.
type SKU struct {
	ID     string
	Price  float64
	Stock  int
	Active bool
	Specs  map[string]string
}

// Line is one cart row: a user+product(+SKU) pair with its quantity
// and checkout selection state. At most one line exists per such pair;
// an absent SKU is its own key.
type Line struct {
	ID        string
	UserID    string
	ProductID string
	SKUID     string
	Quantity  int
	Selected  bool
	Specs     map[string]string

	Product Product
	SKU     *SKU
}

// UnitPrice is the effective price: the SKU price when the line has a
// SKU, the product price otherwise.
func (l *Line) UnitPrice() float64 {
	if l.SKU != nil {
		return l.SKU.Price
	}
	return l.Product.Price
}

// ReferencePrice is the pre-discount price used for the original
// total, falling back to the unit price when none is set.
func (l *Line) ReferencePrice() float64 {
	if l.Product.OriginalPrice > 0 {
		return l.Product.OriginalPrice
	}
	return l.UnitPrice()
}

// Available reports whether the line can participate in checkout. A
// SKU gates availability by its own status and stock; otherwise the
// product stock flag decides.
func (l *Line) Available() bool {
	if l.SKU != nil {
		return l.SKU.Active && l.SKU.Stock > 0
	}
	return l.Product.InStock
}

// StockCeiling is the advisory quantity cap for the line.
func (l *Line) StockCeiling() int {
	if l.SKU != nil {
		return l.SKU.Stock
	}
	return defaultStockCeiling
}
