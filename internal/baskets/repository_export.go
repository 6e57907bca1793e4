package baskets

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// UserMonthAmount is one cell of the accounting export: total order amount for
// a user over one delivery month.
type UserMonthAmount struct {
	UserID uuid.UUID       `json:"user_id"`
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// ProducerMonthQuantity is one cell of the producer export: total ordered
// quantity of a product over one delivery month.
type ProducerMonthQuantity struct {
	ProducerID   uuid.UUID `json:"producer_id"`
	ProducerName string    `json:"producer_name"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	Quantity     int64     `json:"quantity"`
}

func (r *postgresRepository) OrderAmountsByUserAndMonth(ctx context.Context) ([]UserMonthAmount, error) {
	query := `
		SELECT o.user_id,
		       EXTRACT(YEAR FROM d.date)::int,
		       EXTRACT(MONTH FROM d.date)::int,
		       COALESCE(SUM(o.amount), 0.00)
		FROM orders o
		JOIN deliveries d ON d.id = o.delivery_id
		GROUP BY o.user_id, EXTRACT(YEAR FROM d.date), EXTRACT(MONTH FROM d.date)
		ORDER BY o.user_id, 2, 3
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order amounts per user and month: %w", err)
	}
	defer rows.Close()

	result := make([]UserMonthAmount, 0)
	for rows.Next() {
		var row UserMonthAmount
		if err := rows.Scan(&row.UserID, &row.Year, &row.Month, &row.Amount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order amount row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order amount rows: %w", err)
	}
	return result, nil
}

func (r *postgresRepository) ProducerQuantitiesByMonth(ctx context.Context) ([]ProducerMonthQuantity, error) {
	query := `
		SELECT pr.id, pr.name, p.id, p.name,
		       EXTRACT(YEAR FROM d.date)::int,
		       EXTRACT(MONTH FROM d.date)::int,
		       COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN producers pr ON pr.id = p.producer_id
		JOIN orders o ON o.id = oi.order_id
		JOIN deliveries d ON d.id = o.delivery_id
		GROUP BY pr.id, pr.name, p.id, p.name, EXTRACT(YEAR FROM d.date), EXTRACT(MONTH FROM d.date)
		ORDER BY pr.name, p.name, 5, 6
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query producer quantities per month: %w", err)
	}
	defer rows.Close()

	result := make([]ProducerMonthQuantity, 0)
	for rows.Next() {
		var row ProducerMonthQuantity
		err := rows.Scan(&row.ProducerID, &row.ProducerName, &row.ProductID, &row.ProductName, &row.Year, &row.Month, &row.Quantity)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan producer quantity row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating producer quantity rows: %w", err)
	}
	return result, nil
}
