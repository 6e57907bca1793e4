package baskets

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// OrderDeadlineDaysBefore is applied when a delivery is created without an
// explicit order deadline.
const OrderDeadlineDaysBefore = 4

type Producer struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Phone    string    `json:"phone,omitempty" db:"phone"`
	Email    string    `json:"email,omitempty" db:"email"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

type Product struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProducerID uuid.UUID       `json:"producer_id" db:"producer_id"`
	Name       string          `json:"name" db:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	IsActive   bool            `json:"is_active" db:"is_active"`
}

// Delivery is a dated distribution event exposing a curated subset of active
// products. Products is only populated by repository methods that load the
// relation.
type Delivery struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Date          time.Time `json:"date" db:"date"`
	OrderDeadline time.Time `json:"order_deadline" db:"order_deadline"`
	Message       string    `json:"message,omitempty" db:"message"`
	Products      []Product `json:"products,omitempty" db:"-"`
}

// IsOpen reports whether the delivery still accepts order mutations: open
// until the end of its order deadline day.
func (d *Delivery) IsOpen(today time.Time) bool {
	return !dateOnly(today).After(dateOnly(d.OrderDeadline))
}

type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	DeliveryID uuid.UUID       `json:"delivery_id" db:"delivery_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Message    string          `json:"message,omitempty" db:"message"`
	Items      []OrderItem     `json:"items" db:"-"`
	Delivery   *Delivery       `json:"delivery,omitempty" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOpen is a computed predicate, never stored: an order silently becomes
// closed once its delivery deadline passes.
func (o *Order) IsOpen(today time.Time) bool {
	return o.Delivery != nil && o.Delivery.IsOpen(today)
}

// OrderItem references a live product while its order is open and carries a
// frozen snapshot of the product name and unit price afterwards. ProductID is
// nullable: a hard-deleted product leaves historical items snapshot-only.
type OrderItem struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	OrderID          uuid.UUID           `json:"order_id" db:"order_id"`
	ProductID        uuid.NullUUID       `json:"product_id" db:"product_id"`
	Quantity         int                 `json:"quantity" db:"quantity"`
	Amount           decimal.Decimal     `json:"amount" db:"amount"`
	ProductName      string              `json:"product_name" db:"product_name"`
	ProductUnitPrice decimal.NullDecimal `json:"product_unit_price" db:"product_unit_price"`
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
