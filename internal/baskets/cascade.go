package baskets

import (
	"context"
	"fmt"
	"sort"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// userSet accumulates the distinct owners of orders touched by a cascade, so
// callers can notify them. The core never does notification I/O itself.
type userSet struct {
	ids map[uuid.UUID]struct{}
}

func newUserSet() *userSet {
	return &userSet{ids: make(map[uuid.UUID]struct{})}
}

func (s *userSet) add(id uuid.UUID) {
	s.ids[id] = struct{}{}
}

func (s *userSet) addAll(ids []uuid.UUID) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *userSet) sorted() []uuid.UUID {
	result := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].String() < result[j].String()
	})
	return result
}

// applyItemSnapshot implements the item amount rule: while the owning order is
// open the snapshot follows the live product; an item first saved on a closed
// order gets its snapshot initialized once; otherwise the frozen price wins.
func applyItemSnapshot(ctx context.Context, r Repository, item *OrderItem, orderOpen bool) error {
	useLive := item.ProductID.Valid && (orderOpen || !item.ProductUnitPrice.Valid)
	if useLive {
		product, err := r.GetProductByID(ctx, item.ProductID.UUID)
		if err != nil {
			return err
		}
		item.ProductName = product.Name
		item.ProductUnitPrice = decimal.NullDecimal{Decimal: product.UnitPrice, Valid: true}
		item.Amount = product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		return nil
	}
	if !item.ProductUnitPrice.Valid {
		return fmt.Errorf("%w: item has neither a product reference nor a price snapshot", ErrInvalidItem)
	}
	item.Amount = item.ProductUnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return nil
}

// recomputeOrderAmount re-derives an order's amount from its current items and
// persists it; an order left with no items is deleted. Reports whether the
// order was deleted.
func recomputeOrderAmount(ctx context.Context, r Repository, orderID uuid.UUID) (bool, error) {
	items, err := r.ListOrderItems(ctx, orderID)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		if err := r.DeleteOrder(ctx, orderID); err != nil {
			return false, err
		}
		return true, nil
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	order, err := r.GetOrderByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	order.Amount = total
	if err := r.UpdateOrder(ctx, order); err != nil {
		return false, err
	}
	return false, nil
}

// deleteItemsAndRecompute removes the given items, recomputes each affected
// order (deleting orders left empty) and returns the distinct owners.
func deleteItemsAndRecompute(ctx context.Context, r Repository, items []OrderItem) ([]uuid.UUID, error) {
	byOrder := make(map[uuid.UUID][]OrderItem)
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	users := newUserSet()
	for orderID, orderItems := range byOrder {
		order, err := r.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		users.add(order.UserID)

		for _, item := range orderItems {
			if err := r.DeleteOrderItem(ctx, item.ID); err != nil {
				return nil, err
			}
		}
		if _, err := recomputeOrderAmount(ctx, r, orderID); err != nil {
			return nil, err
		}
	}
	return users.sorted(), nil
}
