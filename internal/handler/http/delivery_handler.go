package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
	"github.com/vasiliy-maslov/baskets-service/internal/notify"
)

const dateFormat = "2006-01-02"

type DeliveryRequest struct {
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	OrderDeadline string   `json:"order_deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Message       string   `json:"message,omitempty" validate:"max=128"`
	ProductIDs    []string `json:"product_ids" validate:"dive,uuid4"`
}

type SetDeliveryProductsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,dive,uuid4"`
}

type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type ProducerProductsResponse struct {
	ProducerID uuid.UUID         `json:"producer_id"`
	Name       string            `json:"name"`
	Products   []ProductResponse `json:"products"`
}

type DeliveryResponse struct {
	ID            uuid.UUID `json:"id"`
	Date          string    `json:"date"`
	OrderDeadline string    `json:"order_deadline"`
	Message       string    `json:"message,omitempty"`
	IsOpen        bool      `json:"is_open"`
}

type DeliveryDetailResponse struct {
	DeliveryResponse
	ProductsByProducer []ProducerProductsResponse `json:"products_by_producer"`
}

type CascadeResponse struct {
	AffectedUserIDs []uuid.UUID `json:"affected_user_ids"`
}

type DeliveryHandler struct {
	service  baskets.DeliveryService
	catalog  baskets.CatalogService
	notifier notify.Notifier
	validate *validator.Validate
}

func NewDeliveryHandler(service baskets.DeliveryService, catalog baskets.CatalogService, notifier notify.Notifier) *DeliveryHandler {
	return &DeliveryHandler{
		service:  service,
		catalog:  catalog,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (h *DeliveryHandler) RegisterRoutes(router chi.Router) {
	router.Get("/deliveries", h.handleListOpenDeliveries)
	router.Get("/deliveries/{id}", h.handleGetDelivery)
}

func (h *DeliveryHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/deliveries", h.handleCreateDelivery)
	router.Put("/deliveries/{id}", h.handleUpdateDelivery)
	router.Delete("/deliveries/{id}", h.handleDeleteDelivery)
	router.Put("/deliveries/{id}/products", h.handleSetProducts)
	router.Delete("/deliveries/{id}/products/{productID}", h.handleRemoveProduct)
}

func (h *DeliveryHandler) handleListOpenDeliveries(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.service.ListOpenDeliveries(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list open deliveries")
		respondWithError(w, http.StatusInternalServerError, "Failed to list deliveries")
		return
	}

	responsePayload := make([]DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		responsePayload = append(responsePayload, toDeliveryResponse(&deliveries[i]))
	}
	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *DeliveryHandler) handleGetDelivery(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	delivery, err := h.service.GetDeliveryByID(r.Context(), deliveryID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get delivery")
		return
	}

	groups, err := h.groupProductsByProducer(r, delivery.Products)
	if err != nil {
		log.Error().Err(err).Stringer("delivery_id", deliveryID).Msg("Failed to group delivery products")
		respondWithError(w, http.StatusInternalServerError, "Failed to get delivery")
		return
	}

	respondWithJSON(w, http.StatusOK, DeliveryDetailResponse{
		DeliveryResponse:   toDeliveryResponse(delivery),
		ProductsByProducer: groups,
	})
}

func (h *DeliveryHandler) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	payload, productIDs, ok := h.decodeDeliveryRequest(w, r)
	if !ok {
		return
	}

	delivery, ok := deliveryFromRequest(w, payload)
	if !ok {
		return
	}

	if err := h.service.CreateDelivery(r.Context(), delivery, productIDs); err != nil {
		log.Error().Err(err).Msg("Failed to create delivery")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, toDeliveryResponse(delivery))
}

func (h *DeliveryHandler) handleUpdateDelivery(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	payload, _, ok := h.decodeDeliveryRequest(w, r)
	if !ok {
		return
	}

	delivery, ok := deliveryFromRequest(w, payload)
	if !ok {
		return
	}
	delivery.ID = deliveryID

	if err := h.service.UpdateDelivery(r.Context(), delivery); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toDeliveryResponse(delivery))
}

func (h *DeliveryHandler) handleDeleteDelivery(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteDelivery(r.Context(), deliveryID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryHandler) handleSetProducts(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload SetDeliveryProductsRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return
	}

	productIDs, err := parseUUIDs(requestPayload.ProductIDs)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	affected, err := h.service.SetProducts(r.Context(), deliveryID, productIDs)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	h.notifier.OrdersChanged(r.Context(), affected, "delivery product set changed")
	respondWithJSON(w, http.StatusOK, CascadeResponse{AffectedUserIDs: affected})
}

func (h *DeliveryHandler) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}
	productID, err := uuid.FromString(chi.URLParam(r, "productID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid productID parameter")
		return
	}

	affected, err := h.service.RemoveProduct(r.Context(), deliveryID, productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	h.notifier.OrdersChanged(r.Context(), affected, "product removed from delivery")
	respondWithJSON(w, http.StatusOK, CascadeResponse{AffectedUserIDs: affected})
}

func (h *DeliveryHandler) decodeDeliveryRequest(w http.ResponseWriter, r *http.Request) (*DeliveryRequest, []uuid.UUID, bool) {
	var requestPayload DeliveryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, nil, false
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return nil, nil, false
	}

	productIDs, err := parseUUIDs(requestPayload.ProductIDs)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return nil, nil, false
	}
	return &requestPayload, productIDs, true
}

func (h *DeliveryHandler) groupProductsByProducer(r *http.Request, products []baskets.Product) ([]ProducerProductsResponse, error) {
	groups := make([]ProducerProductsResponse, 0)
	indexByProducer := make(map[uuid.UUID]int)

	for _, p := range products {
		idx, ok := indexByProducer[p.ProducerID]
		if !ok {
			producer, err := h.catalog.GetProducerByID(r.Context(), p.ProducerID)
			if err != nil {
				return nil, err
			}
			idx = len(groups)
			indexByProducer[p.ProducerID] = idx
			groups = append(groups, ProducerProductsResponse{
				ProducerID: producer.ID,
				Name:       producer.Name,
			})
		}
		groups[idx].Products = append(groups[idx].Products, ProductResponse{
			ID:        p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
		})
	}
	return groups, nil
}

func deliveryFromRequest(w http.ResponseWriter, payload *DeliveryRequest) (*baskets.Delivery, bool) {
	date, err := time.Parse(dateFormat, payload.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date")
		return nil, false
	}
	delivery := &baskets.Delivery{
		Date:    date,
		Message: payload.Message,
	}
	if payload.OrderDeadline != "" {
		deadline, err := time.Parse(dateFormat, payload.OrderDeadline)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid order_deadline")
			return nil, false
		}
		delivery.OrderDeadline = deadline
	}
	return delivery, true
}

func toDeliveryResponse(d *baskets.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:            d.ID,
		Date:          d.Date.Format(dateFormat),
		OrderDeadline: d.OrderDeadline.Format(dateFormat),
		Message:       d.Message,
		IsOpen:        d.IsOpen(time.Now()),
	}
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.FromString(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
