package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/Impluse2/flowersss/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	log.Println("Connected to postgres")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, link, price, image
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var image sql.NullString
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Link,
			&p.Price,
			&image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Image = image.String
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

// EnsureUser records the user on first contact. Repeat calls are no-ops; the
// original username is kept.
func (r *Repository) EnsureUser(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO users (telegram_user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_user_id) DO NOTHING
	`

	name := sql.NullString{String: username, Valid: username != ""}
	if _, err := r.db.ExecContext(ctx, query, userID, name); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// AddCartItem inserts the cart row or bumps its quantity in one statement, so
// two concurrent adds for the same product both land. Returns ErrUserNotFound
// when the user was never registered via EnsureUser.
func (r *Repository) AddCartItem(ctx context.Context, userID int64, item domain.CartItem) error {
	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM users WHERE telegram_user_id = $1)`
	if err := r.db.QueryRowContext(ctx, checkQuery, userID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	query := `
		INSERT INTO cart (telegram_user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_user_id, product_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity
	`

	if _, err := r.db.ExecContext(ctx, query, userID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// GetCartLines joins cart rows against current product metadata. Rows whose
// product disappeared after a catalog refresh simply drop out of the join.
func (r *Repository) GetCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	query := `
		SELECT p.name, p.price, c.quantity
		FROM cart c
		JOIN products p ON c.product_id = p.id
		WHERE c.telegram_user_id = $1
		ORDER BY p.name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.Name, &l.Price, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}

// ClearCart removes every cart row of the user and reports how many there
// were. Clearing an already empty cart is not an error.
func (r *Repository) ClearCart(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE telegram_user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
