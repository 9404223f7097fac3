package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arvindkr/storeops/internal/domain"
)

var ErrNotFound = errors.New("product not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List fetches the catalog. Disabled products are included; they only
// disappear from the order-creation picker, never from the list.
func (r *Repository) List(ctx context.Context, enabledOnly bool) ([]domain.Product, error) {
	q := `
		SELECT id, name, price, unit, description, image_url, enable
		FROM products
		ORDER BY name
	`
	if enabledOnly {
		q = `
			SELECT id, name, price, unit, description, image_url, enable
			FROM products
			WHERE enable
			ORDER BY name
		`
	}

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var price sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Unit, &p.Description, &p.ImageURL, &p.Enable); err != nil {
			return nil, err
		}
		p.Price = price.Float64
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	var price sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, unit, description, image_url, enable
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &price, &p.Unit, &p.Description, &p.ImageURL, &p.Enable)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.Price = price.Float64
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, unit, description, image_url, enable)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.Name, product.Price, product.Unit, product.Description, product.ImageURL, product.Enable)
	return err
}

// Update overwrites the editable fields of one product. Price changes
// never touch existing orders; those keep the snapshot taken at
// creation.
func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, price = $2, unit = $3, description = $4, image_url = $5, enable = $6
		WHERE id = $7
	`, product.Name, product.Price, product.Unit, product.Description, product.ImageURL, product.Enable, product.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, product.ID)
	}

	return nil
}
