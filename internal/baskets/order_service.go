package baskets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderItemInput is what a user submits: a product choice and a quantity.
// Snapshots and amounts are always derived server-side.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderService owns the order lifecycle. User mutations are only accepted
// while the related delivery is open; the item-level staff operations apply
// the snapshot rule directly and also work on closed orders (data correction).
type OrderService interface {
	CreateOrder(ctx context.Context, userID, deliveryID uuid.UUID, message string, items []OrderItemInput) (*Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateOrder(ctx context.Context, orderID, userID uuid.UUID, message string, items []OrderItemInput) (*Order, error)
	DeleteOrder(ctx context.Context, orderID, userID uuid.UUID) error

	SaveOrderItem(ctx context.Context, item *OrderItem) error
	DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error
}

type orderService struct {
	repo Repository
	now  func() time.Time
}

func NewOrderService(repo Repository) OrderService {
	return &orderService{repo: repo, now: time.Now}
}

// CreateOrder places the single order a user may have for a delivery. The
// whole item set is validated against the delivery's product set before
// anything is persisted.
func (s *orderService) CreateOrder(ctx context.Context, userID, deliveryID uuid.UUID, message string, items []OrderItemInput) (*Order, error) {
	delivery, err := s.repo.GetDeliveryByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, ErrDeliveryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch delivery: %w", err)
	}
	if !delivery.IsOpen(s.now()) {
		return nil, ErrDeliveryClosed
	}

	_, err = s.repo.GetOrderByUserAndDelivery(ctx, userID, deliveryID)
	if err == nil {
		return nil, ErrDuplicateOrder
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return nil, fmt.Errorf("service: failed to check existing order: %w", err)
	}

	products, err := validateItems(delivery, items)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Stringer("delivery_id", deliveryID).Msg("service: rejected order creation")
		return nil, err
	}

	order := &Order{
		UserID:     userID,
		DeliveryID: deliveryID,
		Message:    message,
		Amount:     decimal.Zero,
	}
	err = s.repo.InTx(ctx, func(r Repository) error {
		if err := r.CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.createItemsTx(ctx, r, order, items, products)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			return nil, ErrDuplicateOrder
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	order.Delivery = delivery
	log.Info().Stringer("order_id", order.ID).Stringer("user_id", userID).Msg("service: order created")
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	// Orders are scoped to their owner; leaking existence is not useful.
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list user orders: %w", err)
	}
	return orders, nil
}

// UpdateOrder replaces the order's full item set. Validation happens before
// any write, so a rejected update leaves the order untouched.
func (s *orderService) UpdateOrder(ctx context.Context, orderID, userID uuid.UUID, message string, items []OrderItemInput) (*Order, error) {
	order, err := s.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen(s.now()) {
		return nil, ErrDeliveryClosed
	}

	delivery, err := s.repo.GetDeliveryByID(ctx, order.DeliveryID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch delivery: %w", err)
	}

	products, err := validateItems(delivery, items)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: rejected order update")
		return nil, err
	}

	err = s.repo.InTx(ctx, func(r Repository) error {
		for _, item := range order.Items {
			if err := r.DeleteOrderItem(ctx, item.ID); err != nil {
				return err
			}
		}
		order.Message = message
		order.Items = nil
		return s.createItemsTx(ctx, r, order, items, products)
	})
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	order.Delivery = delivery
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID, userID uuid.UUID) error {
	order, err := s.GetOrder(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !order.IsOpen(s.now()) {
		return ErrDeliveryClosed
	}
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("service: failed to delete order: %w", err)
	}
	log.Info().Stringer("order_id", orderID).Msg("service: order deleted")
	return nil
}

// SaveOrderItem creates or updates a single item, applying the snapshot rule:
// live product data while the order is open, one-time snapshot initialization
// for an item first saved on a closed order, frozen price otherwise. The
// order's amount is recomputed in the same transaction.
func (s *orderService) SaveOrderItem(ctx context.Context, item *OrderItem) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		order, err := r.GetOrderByID(ctx, item.OrderID)
		if err != nil {
			return err
		}
		if err := applyItemSnapshot(ctx, r, item, order.IsOpen(s.now())); err != nil {
			return err
		}
		if item.ID == uuid.Nil {
			if err := r.CreateOrderItem(ctx, item); err != nil {
				return err
			}
		} else {
			if err := r.UpdateOrderItem(ctx, item); err != nil {
				return err
			}
		}
		_, err = recomputeOrderAmount(ctx, r, order.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderItemNotFound) ||
			errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInvalidItem) {
			return err
		}
		return fmt.Errorf("service: failed to save order item: %w", err)
	}
	return nil
}

// DeleteOrderItem removes a single item; deleting the last item deletes the
// whole order.
func (s *orderService) DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error {
	err := s.repo.InTx(ctx, func(r Repository) error {
		item, err := r.GetOrderItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := r.DeleteOrderItem(ctx, itemID); err != nil {
			return err
		}
		_, err = recomputeOrderAmount(ctx, r, item.OrderID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrOrderItemNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete order item: %w", err)
	}
	return nil
}

// createItemsTx persists the already-validated items with live snapshots and
// sets the derived order amount, all inside the caller's transaction.
func (s *orderService) createItemsTx(ctx context.Context, r Repository, order *Order, items []OrderItemInput, products map[uuid.UUID]Product) error {
	total := decimal.Zero
	for _, input := range items {
		product := products[input.ProductID]
		item := OrderItem{
			OrderID:          order.ID,
			ProductID:        uuid.NullUUID{UUID: product.ID, Valid: true},
			Quantity:         input.Quantity,
			ProductName:      product.Name,
			ProductUnitPrice: decimal.NullDecimal{Decimal: product.UnitPrice, Valid: true},
			Amount:           product.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
		}
		if err := r.CreateOrderItem(ctx, &item); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
		total = total.Add(item.Amount)
	}
	order.Amount = total
	return r.UpdateOrder(ctx, order)
}

// validateItems checks the business rules for a submitted item set and
// returns the delivery products the items resolve to.
func validateItems(delivery *Delivery, items []OrderItemInput) (map[uuid.UUID]Product, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	available := make(map[uuid.UUID]Product, len(delivery.Products))
	for _, p := range delivery.Products {
		available[p.ID] = p
	}

	products := make(map[uuid.UUID]Product, len(items))
	for _, input := range items {
		if input.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidItem)
		}
		product, ok := available[input.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s not available in this delivery", ErrInvalidItem, input.ProductID)
		}
		products[input.ProductID] = product
	}
	return products, nil
}
