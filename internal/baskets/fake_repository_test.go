package baskets

import (
	"context"
	"sort"
	"time"

	"github.com/gofrs/uuid"
)

// fakeRepository is an in-memory Repository used by the service tests. It
// mirrors the schema's referential behavior: deleting an order drops its
// items, deleting a product nulls item references and leaves delivery links
// removed, deleting a producer drops its products.
type fakeRepository struct {
	producers        map[uuid.UUID]Producer
	products         map[uuid.UUID]Product
	deliveries       map[uuid.UUID]Delivery
	deliveryProducts map[uuid.UUID]map[uuid.UUID]struct{}
	orders           map[uuid.UUID]Order
	items            map[uuid.UUID]OrderItem
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		producers:        make(map[uuid.UUID]Producer),
		products:         make(map[uuid.UUID]Product),
		deliveries:       make(map[uuid.UUID]Delivery),
		deliveryProducts: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		orders:           make(map[uuid.UUID]Order),
		items:            make(map[uuid.UUID]OrderItem),
	}
}

func (f *fakeRepository) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func (f *fakeRepository) CreateProducer(_ context.Context, p *Producer) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	f.producers[p.ID] = *p
	return nil
}

func (f *fakeRepository) GetProducerByID(_ context.Context, id uuid.UUID) (*Producer, error) {
	p, ok := f.producers[id]
	if !ok {
		return nil, ErrProducerNotFound
	}
	out := p
	return &out, nil
}

func (f *fakeRepository) ListProducers(_ context.Context) ([]Producer, error) {
	result := make([]Producer, 0, len(f.producers))
	for _, p := range f.producers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeRepository) UpdateProducer(_ context.Context, p *Producer) error {
	if _, ok := f.producers[p.ID]; !ok {
		return ErrProducerNotFound
	}
	f.producers[p.ID] = *p
	return nil
}

func (f *fakeRepository) DeleteProducer(_ context.Context, id uuid.UUID) error {
	if _, ok := f.producers[id]; !ok {
		return ErrProducerNotFound
	}
	for productID, p := range f.products {
		if p.ProducerID == id {
			_ = f.DeleteProduct(context.Background(), productID)
		}
	}
	delete(f.producers, id)
	return nil
}

func (f *fakeRepository) CreateProduct(_ context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeRepository) GetProductByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	out := p
	return &out, nil
}

func (f *fakeRepository) ListProductsByProducer(_ context.Context, producerID uuid.UUID) ([]Product, error) {
	result := make([]Product, 0)
	for _, p := range f.products {
		if p.ProducerID == producerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeRepository) UpdateProduct(_ context.Context, p *Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(f.products, id)
	for _, linked := range f.deliveryProducts {
		delete(linked, id)
	}
	for itemID, item := range f.items {
		if item.ProductID.Valid && item.ProductID.UUID == id {
			item.ProductID = uuid.NullUUID{}
			f.items[itemID] = item
		}
	}
	return nil
}

func (f *fakeRepository) NullifyItemProductRefs(_ context.Context, productID uuid.UUID) error {
	for itemID, item := range f.items {
		if item.ProductID.Valid && item.ProductID.UUID == productID {
			item.ProductID = uuid.NullUUID{}
			f.items[itemID] = item
		}
	}
	return nil
}

func (f *fakeRepository) CreateDelivery(_ context.Context, d *Delivery) error {
	for _, existing := range f.deliveries {
		if dateOnly(existing.Date).Equal(dateOnly(d.Date)) {
			return ErrDuplicateDeliveryDate
		}
	}
	if d.ID == uuid.Nil {
		d.ID = newID()
	}
	stored := *d
	stored.Products = nil
	f.deliveries[d.ID] = stored
	f.deliveryProducts[d.ID] = make(map[uuid.UUID]struct{})
	return nil
}

func (f *fakeRepository) GetDeliveryByID(_ context.Context, id uuid.UUID) (*Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return nil, ErrDeliveryNotFound
	}
	out := d
	out.Products = f.deliveryProductList(id)
	return &out, nil
}

func (f *fakeRepository) deliveryProductList(deliveryID uuid.UUID) []Product {
	products := make([]Product, 0)
	for productID := range f.deliveryProducts[deliveryID] {
		if p, ok := f.products[productID]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}

func (f *fakeRepository) ListOpenDeliveries(_ context.Context, today time.Time) ([]Delivery, error) {
	result := make([]Delivery, 0)
	for id, d := range f.deliveries {
		if d.IsOpen(today) {
			out := d
			out.Products = f.deliveryProductList(id)
			result = append(result, out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (f *fakeRepository) UpdateDelivery(_ context.Context, d *Delivery) error {
	if _, ok := f.deliveries[d.ID]; !ok {
		return ErrDeliveryNotFound
	}
	for id, existing := range f.deliveries {
		if id != d.ID && dateOnly(existing.Date).Equal(dateOnly(d.Date)) {
			return ErrDuplicateDeliveryDate
		}
	}
	stored := *d
	stored.Products = nil
	f.deliveries[d.ID] = stored
	return nil
}

func (f *fakeRepository) DeleteDelivery(_ context.Context, id uuid.UUID) error {
	if _, ok := f.deliveries[id]; !ok {
		return ErrDeliveryNotFound
	}
	for _, o := range f.orders {
		if o.DeliveryID == id {
			return ErrDeliveryHasOrders
		}
	}
	delete(f.deliveries, id)
	delete(f.deliveryProducts, id)
	return nil
}

func (f *fakeRepository) AddDeliveryProduct(_ context.Context, deliveryID, productID uuid.UUID) error {
	linked, ok := f.deliveryProducts[deliveryID]
	if !ok {
		return ErrDeliveryNotFound
	}
	linked[productID] = struct{}{}
	return nil
}

func (f *fakeRepository) RemoveDeliveryProduct(_ context.Context, deliveryID, productID uuid.UUID) error {
	if linked, ok := f.deliveryProducts[deliveryID]; ok {
		delete(linked, productID)
	}
	return nil
}

func (f *fakeRepository) ListOpenDeliveryIDsWithProduct(_ context.Context, productID uuid.UUID, today time.Time) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, 0)
	for deliveryID, linked := range f.deliveryProducts {
		d := f.deliveries[deliveryID]
		if _, ok := linked[productID]; ok && d.IsOpen(today) {
			result = append(result, deliveryID)
		}
	}
	return result, nil
}

func (f *fakeRepository) CountOrdersByDelivery(_ context.Context, deliveryID uuid.UUID) (int64, error) {
	var count int64
	for _, o := range f.orders {
		if o.DeliveryID == deliveryID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) CreateOrder(_ context.Context, o *Order) error {
	for _, existing := range f.orders {
		if existing.UserID == o.UserID && existing.DeliveryID == o.DeliveryID {
			return ErrDuplicateOrder
		}
	}
	if o.ID == uuid.Nil {
		o.ID = newID()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	stored.Delivery = nil
	f.orders[o.ID] = stored
	return nil
}

func (f *fakeRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := o
	out.Items, _ = f.ListOrderItems(ctx, id)
	if d, ok := f.deliveries[o.DeliveryID]; ok {
		delivery := d
		out.Delivery = &delivery
	}
	return &out, nil
}

func (f *fakeRepository) GetOrderByUserAndDelivery(ctx context.Context, userID, deliveryID uuid.UUID) (*Order, error) {
	for id, o := range f.orders {
		if o.UserID == userID && o.DeliveryID == deliveryID {
			return f.GetOrderByID(ctx, id)
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	result := make([]Order, 0)
	for id, o := range f.orders {
		if o.UserID != userID {
			continue
		}
		full, err := f.GetOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *full)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Delivery.Date.After(result[j].Delivery.Date)
	})
	return result, nil
}

func (f *fakeRepository) UpdateOrder(_ context.Context, o *Order) error {
	stored, ok := f.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	stored.Amount = o.Amount
	stored.Message = o.Message
	stored.UpdatedAt = time.Now().UTC()
	f.orders[o.ID] = stored
	return nil
}

func (f *fakeRepository) DeleteOrder(_ context.Context, id uuid.UUID) error {
	if _, ok := f.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(f.orders, id)
	for itemID, item := range f.items {
		if item.OrderID == id {
			delete(f.items, itemID)
		}
	}
	return nil
}

func (f *fakeRepository) CreateOrderItem(_ context.Context, item *OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = newID()
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeRepository) GetOrderItemByID(_ context.Context, id uuid.UUID) (*OrderItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, ErrOrderItemNotFound
	}
	out := item
	return &out, nil
}

func (f *fakeRepository) UpdateOrderItem(_ context.Context, item *OrderItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return ErrOrderItemNotFound
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeRepository) DeleteOrderItem(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return ErrOrderItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepository) ListOrderItems(_ context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	result := make([]OrderItem, 0)
	for _, item := range f.items {
		if item.OrderID == orderID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProductName < result[j].ProductName })
	return result, nil
}

func (f *fakeRepository) ListOpenOrderItemsByProduct(_ context.Context, productID uuid.UUID, today time.Time) ([]OrderItem, error) {
	result := make([]OrderItem, 0)
	for _, item := range f.items {
		if !item.ProductID.Valid || item.ProductID.UUID != productID {
			continue
		}
		order, ok := f.orders[item.OrderID]
		if !ok {
			continue
		}
		if d, ok := f.deliveries[order.DeliveryID]; ok && d.IsOpen(today) {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeRepository) ListOpenOrderItemsByDeliveryProduct(_ context.Context, deliveryID, productID uuid.UUID, today time.Time) ([]OrderItem, error) {
	d, ok := f.deliveries[deliveryID]
	if !ok || !d.IsOpen(today) {
		return []OrderItem{}, nil
	}
	result := make([]OrderItem, 0)
	for _, item := range f.items {
		if !item.ProductID.Valid || item.ProductID.UUID != productID {
			continue
		}
		if order, ok := f.orders[item.OrderID]; ok && order.DeliveryID == deliveryID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeRepository) OrderAmountsByUserAndMonth(_ context.Context) ([]UserMonthAmount, error) {
	type key struct {
		user  uuid.UUID
		year  int
		month int
	}
	totals := make(map[key]*UserMonthAmount)
	for _, o := range f.orders {
		d, ok := f.deliveries[o.DeliveryID]
		if !ok {
			continue
		}
		k := key{user: o.UserID, year: d.Date.Year(), month: int(d.Date.Month())}
		row, ok := totals[k]
		if !ok {
			row = &UserMonthAmount{UserID: k.user, Year: k.year, Month: k.month}
			totals[k] = row
		}
		row.Amount = row.Amount.Add(o.Amount)
	}
	result := make([]UserMonthAmount, 0, len(totals))
	for _, row := range totals {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserID != result[j].UserID {
			return result[i].UserID.String() < result[j].UserID.String()
		}
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}

func (f *fakeRepository) ProducerQuantitiesByMonth(_ context.Context) ([]ProducerMonthQuantity, error) {
	type key struct {
		product uuid.UUID
		year    int
		month   int
	}
	totals := make(map[key]*ProducerMonthQuantity)
	for _, item := range f.items {
		if !item.ProductID.Valid {
			continue
		}
		product, ok := f.products[item.ProductID.UUID]
		if !ok {
			continue
		}
		producer := f.producers[product.ProducerID]
		order, ok := f.orders[item.OrderID]
		if !ok {
			continue
		}
		d, ok := f.deliveries[order.DeliveryID]
		if !ok {
			continue
		}
		k := key{product: product.ID, year: d.Date.Year(), month: int(d.Date.Month())}
		row, ok := totals[k]
		if !ok {
			row = &ProducerMonthQuantity{
				ProducerID:   producer.ID,
				ProducerName: producer.Name,
				ProductID:    product.ID,
				ProductName:  product.Name,
				Year:         k.year,
				Month:        k.month,
			}
			totals[k] = row
		}
		row.Quantity += int64(item.Quantity)
	}
	result := make([]ProducerMonthQuantity, 0, len(totals))
	for _, row := range totals {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ProducerName != result[j].ProducerName {
			return result[i].ProducerName < result[j].ProducerName
		}
		if result[i].ProductName != result[j].ProductName {
			return result[i].ProductName < result[j].ProductName
		}
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}
