package domain

// CartItem is a cart mutation: add Quantity of ProductID to a user's cart.
type CartItem struct {
	ProductID int64
	Quantity  int
}

// CartLine is one row of a rendered cart, joined against current product
// metadata. Entries whose product vanished from the catalog are not
// represented here.
type CartLine struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}
