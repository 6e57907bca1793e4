package baskets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// DeliveryService manages dated deliveries and their curated product sets.
// Removing a product from an open delivery cascades into open orders of that
// delivery; those operations return the distinct affected order owners.
type DeliveryService interface {
	CreateDelivery(ctx context.Context, d *Delivery, productIDs []uuid.UUID) error
	GetDeliveryByID(ctx context.Context, id uuid.UUID) (*Delivery, error)
	ListOpenDeliveries(ctx context.Context) ([]Delivery, error)
	UpdateDelivery(ctx context.Context, d *Delivery) error
	DeleteDelivery(ctx context.Context, id uuid.UUID) error

	SetProducts(ctx context.Context, deliveryID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error)
	AddProduct(ctx context.Context, deliveryID, productID uuid.UUID) error
	RemoveProduct(ctx context.Context, deliveryID, productID uuid.UUID) ([]uuid.UUID, error)
}

type deliveryService struct {
	repo Repository
	now  func() time.Time
}

func NewDeliveryService(repo Repository) DeliveryService {
	return &deliveryService{repo: repo, now: time.Now}
}

func (s *deliveryService) CreateDelivery(ctx context.Context, d *Delivery, productIDs []uuid.UUID) error {
	if d.OrderDeadline.IsZero() {
		d.OrderDeadline = dateOnly(d.Date).AddDate(0, 0, -OrderDeadlineDaysBefore)
	}

	err := s.repo.InTx(ctx, func(r Repository) error {
		if err := r.CreateDelivery(ctx, d); err != nil {
			return err
		}
		open := d.IsOpen(s.now())
		for _, productID := range productIDs {
			if err := s.addProductTx(ctx, r, d.ID, productID, open); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateDeliveryDate) || errors.Is(err, ErrInactiveProduct) || errors.Is(err, ErrProductNotFound) {
			return err
		}
		log.Error().Err(err).Msg("service: failed to create delivery")
		return fmt.Errorf("service: failed to create delivery: %w", err)
	}
	return nil
}

func (s *deliveryService) GetDeliveryByID(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	d, err := s.repo.GetDeliveryByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDeliveryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch delivery: %w", err)
	}
	return d, nil
}

func (s *deliveryService) ListOpenDeliveries(ctx context.Context) ([]Delivery, error) {
	deliveries, err := s.repo.ListOpenDeliveries(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open deliveries: %w", err)
	}
	return deliveries, nil
}

func (s *deliveryService) UpdateDelivery(ctx context.Context, d *Delivery) error {
	if d.OrderDeadline.IsZero() {
		d.OrderDeadline = dateOnly(d.Date).AddDate(0, 0, -OrderDeadlineDaysBefore)
	}
	if err := s.repo.UpdateDelivery(ctx, d); err != nil {
		if errors.Is(err, ErrDeliveryNotFound) || errors.Is(err, ErrDuplicateDeliveryDate) {
			return err
		}
		return fmt.Errorf("service: failed to update delivery: %w", err)
	}
	return nil
}

func (s *deliveryService) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountOrdersByDelivery(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to check delivery orders: %w", err)
	}
	if count > 0 {
		return ErrDeliveryHasOrders
	}
	if err := s.repo.DeleteDelivery(ctx, id); err != nil {
		if errors.Is(err, ErrDeliveryNotFound) || errors.Is(err, ErrDeliveryHasOrders) {
			return err
		}
		return fmt.Errorf("service: failed to delete delivery: %w", err)
	}
	return nil
}

// SetProducts replaces the delivery's product set. Newly added products must
// be active while the delivery is open; every removed product cascades into
// open orders of this delivery. Closed-delivery edits never touch orders.
func (s *deliveryService) SetProducts(ctx context.Context, deliveryID uuid.UUID, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	users := newUserSet()
	err := s.repo.InTx(ctx, func(r Repository) error {
		delivery, err := r.GetDeliveryByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		open := delivery.IsOpen(s.now())

		target := make(map[uuid.UUID]struct{}, len(productIDs))
		for _, id := range productIDs {
			target[id] = struct{}{}
		}
		current := make(map[uuid.UUID]struct{}, len(delivery.Products))
		for _, p := range delivery.Products {
			current[p.ID] = struct{}{}
		}

		for _, id := range productIDs {
			if _, ok := current[id]; ok {
				continue
			}
			if err := s.addProductTx(ctx, r, deliveryID, id, open); err != nil {
				return err
			}
		}

		for _, p := range delivery.Products {
			if _, ok := target[p.ID]; ok {
				continue
			}
			affected, err := s.removeProductTx(ctx, r, deliveryID, p.ID, open)
			if err != nil {
				return err
			}
			users.addAll(affected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.sorted(), nil
}

func (s *deliveryService) AddProduct(ctx context.Context, deliveryID, productID uuid.UUID) error {
	return s.repo.InTx(ctx, func(r Repository) error {
		delivery, err := r.GetDeliveryByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		return s.addProductTx(ctx, r, deliveryID, productID, delivery.IsOpen(s.now()))
	})
}

func (s *deliveryService) RemoveProduct(ctx context.Context, deliveryID, productID uuid.UUID) ([]uuid.UUID, error) {
	var affected []uuid.UUID
	err := s.repo.InTx(ctx, func(r Repository) error {
		delivery, err := r.GetDeliveryByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		affected, err = s.removeProductTx(ctx, r, deliveryID, productID, delivery.IsOpen(s.now()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}

func (s *deliveryService) addProductTx(ctx context.Context, r Repository, deliveryID, productID uuid.UUID, open bool) error {
	product, err := r.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if open && !product.IsActive {
		log.Warn().Stringer("delivery_id", deliveryID).Stringer("product_id", productID).Msg("service: rejected inactive product on open delivery")
		return fmt.Errorf("%w: %s", ErrInactiveProduct, product.Name)
	}
	return r.AddDeliveryProduct(ctx, deliveryID, productID)
}

func (s *deliveryService) removeProductTx(ctx context.Context, r Repository, deliveryID, productID uuid.UUID, open bool) ([]uuid.UUID, error) {
	if err := r.RemoveDeliveryProduct(ctx, deliveryID, productID); err != nil {
		return nil, err
	}
	if !open {
		return nil, nil
	}
	items, err := r.ListOpenOrderItemsByDeliveryProduct(ctx, deliveryID, productID, s.now())
	if err != nil {
		return nil, err
	}
	return deleteItemsAndRecompute(ctx, r, items)
}
