package repository

import (
	"context"
	"errors"

	"github.com/Impluse2/flowersss/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// ProductRepository is the read side of the catalog backing store.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CartRepository covers per-user cart rows and the lazily created user rows
// they depend on. Consumers define this interface, not the Postgres
// implementation.
type CartRepository interface {
	EnsureUser(ctx context.Context, userID int64, username string) error
	AddCartItem(ctx context.Context, userID int64, item domain.CartItem) error
	GetCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, userID int64) (int64, error)
}
