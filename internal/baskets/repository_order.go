package baskets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderColumns = `o.id, o.user_id, o.delivery_id, o.amount, o.message, o.created_at, o.updated_at,
		d.id, d.date, d.order_deadline, d.message`

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		o.ID = genID
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `
		INSERT INTO orders (id, user_id, delivery_id, amount, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, o.ID, o.UserID, o.DeliveryID, o.Amount, o.Message, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE o.id = $1
	`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.ListOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

func (r *postgresRepository) GetOrderByUserAndDelivery(ctx context.Context, userID, deliveryID uuid.UUID) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE o.user_id = $1 AND o.delivery_id = $2
	`
	o, err := scanOrder(r.db.QueryRow(ctx, query, userID, deliveryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order for user %s and delivery %s: %w", userID, deliveryID, err)
	}

	items, err := r.ListOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

func (r *postgresRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE o.user_id = $1
		ORDER BY d.date DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}

	for i := range orders {
		items, err := r.ListOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *postgresRepository) UpdateOrder(ctx context.Context, o *Order) error {
	o.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE orders
		SET amount = $1, message = $2, updated_at = $3
		WHERE id = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, o.Amount, o.Message, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) CreateOrderItem(ctx context.Context, item *OrderItem) error {
	if item.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", err)
		}
		item.ID = genID
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, amount, product_name, product_unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Amount, item.ProductName, item.ProductUnitPrice)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order item for order %s: %w", item.OrderID, err)
	}
	return nil
}

func (r *postgresRepository) GetOrderItemByID(ctx context.Context, id uuid.UUID) (*OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, amount, product_name, product_unit_price
		FROM order_items
		WHERE id = $1
	`
	var item OrderItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Amount, &item.ProductName, &item.ProductUnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order item by id %s: %w", id, err)
	}
	return &item, nil
}

func (r *postgresRepository) UpdateOrderItem(ctx context.Context, item *OrderItem) error {
	query := `
		UPDATE order_items
		SET product_id = $1, quantity = $2, amount = $3, product_name = $4, product_unit_price = $5
		WHERE id = $6
	`
	cmdTag, err := r.db.Exec(ctx, query,
		item.ProductID, item.Quantity, item.Amount, item.ProductName, item.ProductUnitPrice, item.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update order item %s: %w", item.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete order item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

func (r *postgresRepository) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, amount, product_name, product_unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

// ListOpenOrderItemsByProduct returns every item referencing the product that
// belongs to an order whose delivery is still open.
func (r *postgresRepository) ListOpenOrderItemsByProduct(ctx context.Context, productID uuid.UUID, today time.Time) ([]OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.amount, oi.product_name, oi.product_unit_price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE oi.product_id = $1 AND d.order_deadline >= $2
	`
	rows, err := r.db.Query(ctx, query, productID, dateOnly(today))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query open order items for product %s: %w", productID, err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

func (r *postgresRepository) ListOpenOrderItemsByDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID, today time.Time) ([]OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.amount, oi.product_name, oi.product_unit_price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN deliveries d ON d.id = o.delivery_id
		WHERE o.delivery_id = $1 AND oi.product_id = $2 AND d.order_deadline >= $3
	`
	rows, err := r.db.Query(ctx, query, deliveryID, productID, dateOnly(today))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query open order items for delivery %s and product %s: %w", deliveryID, productID, err)
	}
	defer rows.Close()

	return scanOrderItems(rows)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var d Delivery
	err := row.Scan(
		&o.ID, &o.UserID, &o.DeliveryID, &o.Amount, &o.Message, &o.CreatedAt, &o.UpdatedAt,
		&d.ID, &d.Date, &d.OrderDeadline, &d.Message)
	if err != nil {
		return nil, err
	}
	o.Delivery = &d
	return &o, nil
}

func scanOrderItems(rows pgx.Rows) ([]OrderItem, error) {
	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Amount, &item.ProductName, &item.ProductUnitPrice)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return items, nil
}
