package baskets

import "errors"

var (
	ErrProducerNotFound  = errors.New("producer not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDeliveryNotFound  = errors.New("delivery not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")

	// ErrInactiveProduct rejects adding a deactivated product to an open
	// delivery's product set.
	ErrInactiveProduct = errors.New("product is inactive")

	// ErrDeliveryClosed rejects any order mutation once the delivery's order
	// deadline has passed.
	ErrDeliveryClosed = errors.New("delivery closed (order deadline is past)")

	// ErrDuplicateOrder enforces the one-order-per-(user, delivery) rule.
	ErrDuplicateOrder = errors.New("user already has an order for this delivery")

	// ErrDuplicateDeliveryDate enforces one delivery per calendar day.
	ErrDuplicateDeliveryDate = errors.New("a delivery already exists for this date")

	// ErrNoItems rejects creating or updating an order with an empty item set.
	ErrNoItems = errors.New("order must contain at least one item")

	// ErrInvalidItem rejects an item whose product is not available in the
	// order's delivery or whose quantity is not positive.
	ErrInvalidItem = errors.New("invalid order item")

	// ErrDeliveryHasOrders protects a delivery from deletion while orders
	// still reference it.
	ErrDeliveryHasOrders = errors.New("delivery still has orders")
)
