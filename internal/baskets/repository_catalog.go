package baskets

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *postgresRepository) CreateProducer(ctx context.Context, p *Producer) error {
	if p.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate producer ID: %w", err)
		}
		p.ID = genID
	}

	query := `
		INSERT INTO producers (id, name, phone, email, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Phone, p.Email, p.IsActive)
	if err != nil {
		return fmt.Errorf("repository: failed to insert producer: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetProducerByID(ctx context.Context, id uuid.UUID) (*Producer, error) {
	query := `
		SELECT id, name, phone, email, is_active
		FROM producers
		WHERE id = $1
	`
	var p Producer
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProducerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select producer by id %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresRepository) ListProducers(ctx context.Context) ([]Producer, error) {
	query := `
		SELECT id, name, phone, email, is_active
		FROM producers
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query producers: %w", err)
	}
	defer rows.Close()

	producers := make([]Producer, 0)
	for rows.Next() {
		var p Producer
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.IsActive); err != nil {
			return nil, fmt.Errorf("repository: failed to scan producer: %w", err)
		}
		producers = append(producers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating producers: %w", err)
	}
	return producers, nil
}

func (r *postgresRepository) UpdateProducer(ctx context.Context, p *Producer) error {
	query := `
		UPDATE producers
		SET name = $1, phone = $2, email = $3, is_active = $4
		WHERE id = $5
	`
	cmdTag, err := r.db.Exec(ctx, query, p.Name, p.Phone, p.Email, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update producer %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProducerNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteProducer(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM producers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete producer %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProducerNotFound
	}
	return nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = genID
	}

	query := `
		INSERT INTO products (id, producer_id, name, unit_price, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.ProducerID, p.Name, p.UnitPrice, p.IsActive)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, producer_id, name, unit_price, is_active
		FROM products
		WHERE id = $1
	`
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.ProducerID, &p.Name, &p.UnitPrice, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return &p, nil
}

func (r *postgresRepository) ListProductsByProducer(ctx context.Context, producerID uuid.UUID) ([]Product, error) {
	query := `
		SELECT id, producer_id, name, unit_price, is_active
		FROM products
		WHERE producer_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, producerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products for producer %s: %w", producerID, err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET producer_id = $1, name = $2, unit_price = $3, is_active = $4
		WHERE id = $5
	`
	cmdTag, err := r.db.Exec(ctx, query, p.ProducerID, p.Name, p.UnitPrice, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepository) NullifyItemProductRefs(ctx context.Context, productID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE order_items SET product_id = NULL WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to nullify item references to product %s: %w", productID, err)
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ProducerID, &p.Name, &p.UnitPrice, &p.IsActive); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}
