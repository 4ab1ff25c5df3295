package domain

// Product is one catalog entry. Price keeps the free-text label from the
// scraper ("от 3500 ₽"); numeric comparisons go through the price package.
// An empty Image means the product has no picture.
type Product struct {
	ID    int64
	Name  string
	Link  string
	Price string
	Image string
}

// Snapshot is the full catalog at one point in time. It is replaced wholesale
// on reload and must not be mutated by readers; sorting produces copies.
type Snapshot []Product
