package baskets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// DeleteMode distinguishes soft delete (deactivation, the default staff
// action) from permanent row removal. Both run the open-order cascade.
type DeleteMode int

const (
	Deactivate DeleteMode = iota
	PermanentlyRemove
)

// CatalogService owns producer/product reference data and the cascades that
// keep open orders and deliveries consistent when it changes. Mutations that
// can affect users return the distinct ids of affected order owners.
type CatalogService interface {
	CreateProducer(ctx context.Context, p *Producer) error
	GetProducerByID(ctx context.Context, id uuid.UUID) (*Producer, error)
	ListProducers(ctx context.Context) ([]Producer, error)
	ListProducerProducts(ctx context.Context, producerID uuid.UUID) ([]Product, error)
	UpdateProducer(ctx context.Context, p *Producer) error
	DeleteProducer(ctx context.Context, id uuid.UUID, mode DeleteMode) ([]uuid.UUID, error)

	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) ([]uuid.UUID, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, mode DeleteMode) ([]uuid.UUID, error)
}

type catalogService struct {
	repo Repository
	now  func() time.Time
}

func NewCatalogService(repo Repository) CatalogService {
	return &catalogService{repo: repo, now: time.Now}
}

func (s *catalogService) CreateProducer(ctx context.Context, p *Producer) error {
	p.IsActive = true
	if err := s.repo.CreateProducer(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create producer")
		return fmt.Errorf("service: failed to create producer: %w", err)
	}
	return nil
}

func (s *catalogService) GetProducerByID(ctx context.Context, id uuid.UUID) (*Producer, error) {
	p, err := s.repo.GetProducerByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProducerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch producer: %w", err)
	}
	return p, nil
}

func (s *catalogService) ListProducers(ctx context.Context) ([]Producer, error) {
	producers, err := s.repo.ListProducers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list producers: %w", err)
	}
	return producers, nil
}

func (s *catalogService) ListProducerProducts(ctx context.Context, producerID uuid.UUID) ([]Product, error) {
	products, err := s.repo.ListProductsByProducer(ctx, producerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list producer products: %w", err)
	}
	return products, nil
}

func (s *catalogService) UpdateProducer(ctx context.Context, p *Producer) error {
	current, err := s.repo.GetProducerByID(ctx, p.ID)
	if err != nil {
		return err
	}
	// Activation changes only happen through DeleteProducer cascades.
	p.IsActive = current.IsActive
	if err := s.repo.UpdateProducer(ctx, p); err != nil {
		return fmt.Errorf("service: failed to update producer: %w", err)
	}
	return nil
}

// DeleteProducer deactivates (or removes) the producer and cascades to all of
// its products, each of which runs the full product cascade.
func (s *catalogService) DeleteProducer(ctx context.Context, id uuid.UUID, mode DeleteMode) ([]uuid.UUID, error) {
	users := newUserSet()
	err := s.repo.InTx(ctx, func(r Repository) error {
		producer, err := r.GetProducerByID(ctx, id)
		if err != nil {
			return err
		}

		products, err := r.ListProductsByProducer(ctx, id)
		if err != nil {
			return err
		}
		for i := range products {
			if err := s.deleteProductTx(ctx, r, &products[i], mode, users); err != nil {
				return err
			}
		}

		if mode == PermanentlyRemove {
			return r.DeleteProducer(ctx, id)
		}
		producer.IsActive = false
		return r.UpdateProducer(ctx, producer)
	})
	if err != nil {
		return nil, err
	}

	affected := users.sorted()
	log.Info().Stringer("producer_id", id).Int("affected_users", len(affected)).Msg("service: producer deleted")
	return affected, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, p *Product) error {
	if _, err := s.repo.GetProducerByID(ctx, p.ProducerID); err != nil {
		return err
	}
	p.IsActive = true
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return fmt.Errorf("service: failed to create product: %w", err)
	}
	return nil
}

func (s *catalogService) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

// UpdateProduct persists a name or price change and refreshes every item of an
// open order referencing the product, so open amounts track the live price.
// Closed orders keep their frozen snapshot untouched.
func (s *catalogService) UpdateProduct(ctx context.Context, p *Product) ([]uuid.UUID, error) {
	users := newUserSet()
	err := s.repo.InTx(ctx, func(r Repository) error {
		current, err := r.GetProductByID(ctx, p.ID)
		if err != nil {
			return err
		}
		p.IsActive = current.IsActive
		if err := r.UpdateProduct(ctx, p); err != nil {
			return err
		}

		items, err := r.ListOpenOrderItemsByProduct(ctx, p.ID, s.now())
		if err != nil {
			return err
		}

		byOrder := make(map[uuid.UUID][]OrderItem)
		for _, item := range items {
			byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
		}
		for orderID, orderItems := range byOrder {
			order, err := r.GetOrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			users.add(order.UserID)

			for i := range orderItems {
				item := &orderItems[i]
				if err := applyItemSnapshot(ctx, r, item, true); err != nil {
					return err
				}
				if err := r.UpdateOrderItem(ctx, item); err != nil {
					return err
				}
			}
			if _, err := recomputeOrderAmount(ctx, r, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users.sorted(), nil
}

// DeleteProduct deactivates (or removes) the product: items of open orders
// referencing it are deleted, and it is withdrawn from every open delivery.
// Closed orders and deliveries are untouched; on permanent removal their items
// keep the snapshot with a nulled product reference.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID, mode DeleteMode) ([]uuid.UUID, error) {
	users := newUserSet()
	err := s.repo.InTx(ctx, func(r Repository) error {
		product, err := r.GetProductByID(ctx, id)
		if err != nil {
			return err
		}
		return s.deleteProductTx(ctx, r, product, mode, users)
	})
	if err != nil {
		return nil, err
	}

	affected := users.sorted()
	log.Info().Stringer("product_id", id).Int("affected_users", len(affected)).Msg("service: product deleted")
	return affected, nil
}

func (s *catalogService) deleteProductTx(ctx context.Context, r Repository, product *Product, mode DeleteMode, users *userSet) error {
	items, err := r.ListOpenOrderItemsByProduct(ctx, product.ID, s.now())
	if err != nil {
		return err
	}
	affected, err := deleteItemsAndRecompute(ctx, r, items)
	if err != nil {
		return err
	}
	users.addAll(affected)

	deliveryIDs, err := r.ListOpenDeliveryIDsWithProduct(ctx, product.ID, s.now())
	if err != nil {
		return err
	}
	for _, deliveryID := range deliveryIDs {
		// Related open items are already gone, no further cascade here.
		if err := r.RemoveDeliveryProduct(ctx, deliveryID, product.ID); err != nil {
			return err
		}
	}

	if mode == PermanentlyRemove {
		if err := r.NullifyItemProductRefs(ctx, product.ID); err != nil {
			return err
		}
		return r.DeleteProduct(ctx, product.ID)
	}

	product.IsActive = false
	return r.UpdateProduct(ctx, product)
}
