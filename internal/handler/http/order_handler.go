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
)

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	DeliveryID string             `json:"delivery_id" validate:"required,uuid4"`
	Message    string             `json:"message,omitempty" validate:"max=128"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Message string             `json:"message,omitempty" validate:"max=128"`
	Items   []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SaveOrderItemRequest struct {
	ID        string `json:"id,omitempty" validate:"omitempty,uuid4"`
	OrderID   string `json:"order_id" validate:"required,uuid4"`
	ProductID string `json:"product_id,omitempty" validate:"omitempty,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type OrderItemResponse struct {
	ID               uuid.UUID           `json:"id"`
	ProductID        *uuid.UUID          `json:"product_id,omitempty"`
	ProductName      string              `json:"product_name"`
	ProductUnitPrice decimal.NullDecimal `json:"product_unit_price"`
	Quantity         int                 `json:"quantity"`
	Amount           decimal.Decimal     `json:"amount"`
}

type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	Delivery  DeliveryResponse    `json:"delivery"`
	Amount    decimal.Decimal     `json:"amount"`
	Message   string              `json:"message,omitempty"`
	IsOpen    bool                `json:"is_open"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type OrderHandler struct {
	service  baskets.OrderService
	validate *validator.Validate
}

func NewOrderHandler(service baskets.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Put("/orders/{id}", h.handleUpdateOrder)
	router.Delete("/orders/{id}", h.handleDeleteOrder)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Put("/order-items", h.handleSaveOrderItem)
	router.Delete("/order-items/{id}", h.handleDeleteOrderItem)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid user id")
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list user orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	responsePayload := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responsePayload = append(responsePayload, toOrderResponse(&orders[i]))
	}
	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid user id")
		return
	}

	var requestPayload CreateOrderRequest
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

	deliveryID, err := uuid.FromString(requestPayload.DeliveryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid delivery_id")
		return
	}
	items, err := toItemInputs(requestPayload.Items)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, deliveryID, requestPayload.Message, items)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to create order")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid user id")
		return
	}
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid user id")
		return
	}
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateOrderRequest
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

	items, err := toItemInputs(requestPayload.Items)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), orderID, userID, requestPayload.Message, items)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("Failed to update order")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Missing or invalid user id")
		return
	}
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteOrder(r.Context(), orderID, userID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) handleSaveOrderItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload SaveOrderItemRequest
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

	item := baskets.OrderItem{Quantity: requestPayload.Quantity}
	orderID, err := uuid.FromString(requestPayload.OrderID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order_id")
		return
	}
	item.OrderID = orderID

	if requestPayload.ID != "" {
		itemID, err := uuid.FromString(requestPayload.ID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid id")
			return
		}
		item.ID = itemID
	}
	if requestPayload.ProductID != "" {
		productID, err := uuid.FromString(requestPayload.ProductID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid product_id")
			return
		}
		item.ProductID = uuid.NullUUID{UUID: productID, Valid: true}
	}

	if err := h.service.SaveOrderItem(r.Context(), &item); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderItemResponse(&item))
}

func (h *OrderHandler) handleDeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteOrderItem(r.Context(), itemID); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toItemInputs(items []OrderItemRequest) ([]baskets.OrderItemInput, error) {
	inputs := make([]baskets.OrderItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, baskets.OrderItemInput{ProductID: productID, Quantity: item.Quantity})
	}
	return inputs, nil
}

func toOrderItemResponse(item *baskets.OrderItem) OrderItemResponse {
	response := OrderItemResponse{
		ID:               item.ID,
		ProductName:      item.ProductName,
		ProductUnitPrice: item.ProductUnitPrice,
		Quantity:         item.Quantity,
		Amount:           item.Amount,
	}
	if item.ProductID.Valid {
		productID := item.ProductID.UUID
		response.ProductID = &productID
	}
	return response
}

func toOrderResponse(order *baskets.Order) OrderResponse {
	response := OrderResponse{
		ID:        order.ID,
		Amount:    order.Amount,
		Message:   order.Message,
		IsOpen:    order.IsOpen(time.Now()),
		Items:     make([]OrderItemResponse, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Delivery != nil {
		response.Delivery = toDeliveryResponse(order.Delivery)
	}
	for i := range order.Items {
		response.Items = append(response.Items, toOrderItemResponse(&order.Items[i]))
	}
	return response
}
