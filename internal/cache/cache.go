package cache

import (
	"context"
	"errors"

	"github.com/Impluse2/flowersss/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Set(ctx context.Context, userID int64, lines []domain.CartLine) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
