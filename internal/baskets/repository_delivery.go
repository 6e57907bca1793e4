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

func (r *postgresRepository) CreateDelivery(ctx context.Context, d *Delivery) error {
	if d.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate delivery ID: %w", err)
		}
		d.ID = genID
	}

	query := `
		INSERT INTO deliveries (id, date, order_deadline, message)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, d.ID, d.Date, d.OrderDeadline, d.Message)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateDeliveryDate
		}
		return fmt.Errorf("repository: failed to insert delivery: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetDeliveryByID(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	query := `
		SELECT id, date, order_deadline, message
		FROM deliveries
		WHERE id = $1
	`
	var d Delivery
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Date, &d.OrderDeadline, &d.Message)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("repository: failed to select delivery by id %s: %w", id, err)
	}

	products, err := r.listDeliveryProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Products = products

	return &d, nil
}

func (r *postgresRepository) ListOpenDeliveries(ctx context.Context, today time.Time) ([]Delivery, error) {
	query := `
		SELECT id, date, order_deadline, message
		FROM deliveries
		WHERE order_deadline >= $1
		ORDER BY date
	`
	rows, err := r.db.Query(ctx, query, dateOnly(today))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query open deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]Delivery, 0)
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.Date, &d.OrderDeadline, &d.Message); err != nil {
			return nil, fmt.Errorf("repository: failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating deliveries: %w", err)
	}

	for i := range deliveries {
		products, err := r.listDeliveryProducts(ctx, deliveries[i].ID)
		if err != nil {
			return nil, err
		}
		deliveries[i].Products = products
	}

	return deliveries, nil
}

func (r *postgresRepository) UpdateDelivery(ctx context.Context, d *Delivery) error {
	query := `
		UPDATE deliveries
		SET date = $1, order_deadline = $2, message = $3
		WHERE id = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, d.Date, d.OrderDeadline, d.Message, d.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateDeliveryDate
		}
		return fmt.Errorf("repository: failed to update delivery %s: %w", d.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrDeliveryHasOrders
		}
		return fmt.Errorf("repository: failed to delete delivery %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDeliveryNotFound
	}
	return nil
}

func (r *postgresRepository) AddDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID) error {
	query := `
		INSERT INTO delivery_products (delivery_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, deliveryID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to add product %s to delivery %s: %w", productID, deliveryID, err)
	}
	return nil
}

func (r *postgresRepository) RemoveDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID) error {
	query := `
		DELETE FROM delivery_products
		WHERE delivery_id = $1 AND product_id = $2
	`
	_, err := r.db.Exec(ctx, query, deliveryID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to remove product %s from delivery %s: %w", productID, deliveryID, err)
	}
	return nil
}

func (r *postgresRepository) ListOpenDeliveryIDsWithProduct(ctx context.Context, productID uuid.UUID, today time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT d.id
		FROM deliveries d
		JOIN delivery_products dp ON dp.delivery_id = d.id
		WHERE dp.product_id = $1 AND d.order_deadline >= $2
	`
	rows, err := r.db.Query(ctx, query, productID, dateOnly(today))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query open deliveries with product %s: %w", productID, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: failed to scan delivery id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating delivery ids: %w", err)
	}
	return ids, nil
}

func (r *postgresRepository) CountOrdersByDelivery(ctx context.Context, deliveryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE delivery_id = $1`, deliveryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count orders for delivery %s: %w", deliveryID, err)
	}
	return count, nil
}

func (r *postgresRepository) listDeliveryProducts(ctx context.Context, deliveryID uuid.UUID) ([]Product, error) {
	query := `
		SELECT p.id, p.producer_id, p.name, p.unit_price, p.is_active
		FROM products p
		JOIN delivery_products dp ON dp.product_id = p.id
		WHERE dp.delivery_id = $1
		ORDER BY p.producer_id, p.name
	`
	rows, err := r.db.Query(ctx, query, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products for delivery %s: %w", deliveryID, err)
	}
	defer rows.Close()

	return scanProducts(rows)
}
