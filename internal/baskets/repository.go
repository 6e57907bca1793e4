package baskets

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Repository is the persistence boundary of the baskets domain. Cascade rules
// live in the services; the repository only exposes the row-level operations
// they compose, plus InTx so a whole cascade commits or rolls back as one.
type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	CreateProducer(ctx context.Context, p *Producer) error
	GetProducerByID(ctx context.Context, id uuid.UUID) (*Producer, error)
	ListProducers(ctx context.Context) ([]Producer, error)
	UpdateProducer(ctx context.Context, p *Producer) error
	DeleteProducer(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProductsByProducer(ctx context.Context, producerID uuid.UUID) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	NullifyItemProductRefs(ctx context.Context, productID uuid.UUID) error

	CreateDelivery(ctx context.Context, d *Delivery) error
	GetDeliveryByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	ListOpenDeliveries(ctx context.Context, today time.Time) ([]Delivery, error)
	UpdateDelivery(ctx context.Context, d *Delivery) error
	DeleteDelivery(ctx context.Context, id uuid.UUID) error
	AddDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID) error
	RemoveDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID) error
	ListOpenDeliveryIDsWithProduct(ctx context.Context, productID uuid.UUID, today time.Time) ([]uuid.UUID, error)
	CountOrdersByDelivery(ctx context.Context, deliveryID uuid.UUID) (int64, error)

	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByUserAndDelivery(ctx context.Context, userID, deliveryID uuid.UUID) (*Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	CreateOrderItem(ctx context.Context, item *OrderItem) error
	GetOrderItemByID(ctx context.Context, id uuid.UUID) (*OrderItem, error)
	UpdateOrderItem(ctx context.Context, item *OrderItem) error
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
	ListOpenOrderItemsByProduct(ctx context.Context, productID uuid.UUID, today time.Time) ([]OrderItem, error)
	ListOpenOrderItemsByDeliveryProduct(ctx context.Context, deliveryID, productID uuid.UUID, today time.Time) ([]OrderItem, error)

	OrderAmountsByUserAndMonth(ctx context.Context) ([]UserMonthAmount, error)
	ProducerQuantitiesByMonth(ctx context.Context) ([]ProducerMonthQuantity, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	pool *pgxpool.Pool // nil when bound to a transaction
	db   querier
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool, db: pool}
}

func (r *postgresRepository) InTx(ctx context.Context, fn func(Repository) error) (err error) {
	if r.pool == nil {
		// Already inside a transaction: nested cascades join it.
		return fn(r)
	}

	tx, beginErr := r.pool.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(&postgresRepository{db: tx})
	return err
}
