package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/arvindkr/storeops/internal/domain"
)

// ErrNotFound is returned when a partial update targets an order the
// store does not hold.
var ErrNotFound = errors.New("order not found")

// updatableColumns is the whitelist for partial updates. Everything
// else on an order is immutable after creation.
var updatableColumns = map[string]bool{
	"status":  true,
	"payment": true,
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, user_id, product_id, product_name, price, quantity, unit, total_price, ordered_at, delivery_date, payment, status`

// List fetches every order, newest first. Downstream consumers keep
// this order as-is; buckets and stats do not depend on it.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY ordered_at DESC NULLS LAST
	`)
}

// ListByUser fetches one customer's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY ordered_at DESC NULLS LAST
	`, userID)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// Create inserts a new order. The caller has already snapshotted the
// product's price, name and unit and computed the total; OrderedAt is
// set by the caller once and never touched again.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, product_id, product_name, price, quantity, unit, total_price, ordered_at, delivery_date, payment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, order.ID, order.UserID, order.ProductID, order.ProductName, order.Price,
		order.Quantity, order.Unit, order.TotalPrice, order.OrderedAt, order.DeliveryDate,
		order.Payment, order.Status)
	return err
}

// UpdateOrderFields patches the named fields on one order, touching
// nothing else on the record. Only status and payment are accepted.
func (r *Repository) UpdateOrderFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !updatableColumns[column] {
			return fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, fields[column])
	}
	args = append(args, id)

	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(assignments, ", "), len(args)),
		args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order        domain.Order
		price        sql.NullFloat64
		totalPrice   sql.NullFloat64
		orderedAt    sql.NullTime
		deliveryDate sql.NullTime
	)

	err := row.Scan(&order.ID, &order.UserID, &order.ProductID, &order.ProductName,
		&price, &order.Quantity, &order.Unit, &totalPrice, &orderedAt, &deliveryDate,
		&order.Payment, &order.Status)
	if err != nil {
		return domain.Order{}, err
	}

	// Absent numerics read as zero; absent timestamps stay nil.
	order.Price = price.Float64
	order.TotalPrice = totalPrice.Float64
	if orderedAt.Valid {
		t := orderedAt.Time
		order.OrderedAt = &t
	}
	if deliveryDate.Valid {
		t := deliveryDate.Time
		order.DeliveryDate = &t
	}

	return order, nil
}
