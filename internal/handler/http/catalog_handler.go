package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
	"github.com/vasiliy-maslov/baskets-service/internal/notify"
)

type ProducerRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Phone string `json:"phone,omitempty" validate:"max=18"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type ProductRequest struct {
	ProducerID string          `json:"producer_id" validate:"required,uuid4"`
	Name       string          `json:"name" validate:"required,max=64"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"required"`
}

// CatalogHandler exposes the staff endpoints for reference data. Mutations
// that cascade into open orders respond with the affected user ids and hand
// them to the notifier.
type CatalogHandler struct {
	service  baskets.CatalogService
	notifier notify.Notifier
	validate *validator.Validate
}

func NewCatalogHandler(service baskets.CatalogService, notifier notify.Notifier) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		notifier: notifier,
		validate: validator.New(),
	}
}

func (h *CatalogHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/producers", h.handleListProducers)
	router.Post("/producers", h.handleCreateProducer)
	router.Get("/producers/{id}", h.handleGetProducer)
	router.Get("/producers/{id}/products", h.handleListProducerProducts)
	router.Put("/producers/{id}", h.handleUpdateProducer)
	router.Delete("/producers/{id}", h.handleDeleteProducer)

	router.Post("/products", h.handleCreateProduct)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *CatalogHandler) handleListProducers(w http.ResponseWriter, r *http.Request) {
	producers, err := h.service.ListProducers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list producers")
		respondWithError(w, http.StatusInternalServerError, "Failed to list producers")
		return
	}
	respondWithJSON(w, http.StatusOK, producers)
}

func (h *CatalogHandler) handleCreateProducer(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeProducerRequest(w, r)
	if !ok {
		return
	}

	producer := baskets.Producer{
		Name:  payload.Name,
		Phone: payload.Phone,
		Email: payload.Email,
	}
	if err := h.service.CreateProducer(r.Context(), &producer); err != nil {
		log.Error().Err(err).Msg("Failed to create producer")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create producer")
		return
	}
	respondWithJSON(w, http.StatusCreated, producer)
}

func (h *CatalogHandler) handleGetProducer(w http.ResponseWriter, r *http.Request) {
	producerID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	producer, err := h.service.GetProducerByID(r.Context(), producerID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get producer")
		return
	}
	respondWithJSON(w, http.StatusOK, producer)
}

func (h *CatalogHandler) handleListProducerProducts(w http.ResponseWriter, r *http.Request) {
	producerID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	products, err := h.service.ListProducerProducts(r.Context(), producerID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleUpdateProducer(w http.ResponseWriter, r *http.Request) {
	producerID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	payload, ok := h.decodeProducerRequest(w, r)
	if !ok {
		return
	}

	producer := baskets.Producer{
		ID:    producerID,
		Name:  payload.Name,
		Phone: payload.Phone,
		Email: payload.Email,
	}
	if err := h.service.UpdateProducer(r.Context(), &producer); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update producer")
		return
	}
	respondWithJSON(w, http.StatusOK, producer)
}

func (h *CatalogHandler) handleDeleteProducer(w http.ResponseWriter, r *http.Request) {
	producerID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	affected, err := h.service.DeleteProducer(r.Context(), producerID, deleteModeFromRequest(r))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete producer")
		return
	}

	h.notifier.OrdersChanged(r.Context(), affected, "producer removed")
	respondWithJSON(w, http.StatusOK, CascadeResponse{AffectedUserIDs: affected})
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	producerID, err := uuid.FromString(payload.ProducerID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid producer_id")
		return
	}

	product := baskets.Product{
		ProducerID: producerID,
		Name:       payload.Name,
		UnitPrice:  payload.UnitPrice,
	}
	if err := h.service.CreateProduct(r.Context(), &product); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	product, err := h.service.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	payload, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}
	producerID, err := uuid.FromString(payload.ProducerID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid producer_id")
		return
	}

	product := baskets.Product{
		ID:         productID,
		ProducerID: producerID,
		Name:       payload.Name,
		UnitPrice:  payload.UnitPrice,
	}
	affected, err := h.service.UpdateProduct(r.Context(), &product)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}

	h.notifier.OrdersChanged(r.Context(), affected, "product updated")
	respondWithJSON(w, http.StatusOK, CascadeResponse{AffectedUserIDs: affected})
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	affected, err := h.service.DeleteProduct(r.Context(), productID, deleteModeFromRequest(r))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete product")
		return
	}

	h.notifier.OrdersChanged(r.Context(), affected, "product removed")
	respondWithJSON(w, http.StatusOK, CascadeResponse{AffectedUserIDs: affected})
}

func (h *CatalogHandler) decodeProducerRequest(w http.ResponseWriter, r *http.Request) (*ProducerRequest, bool) {
	var requestPayload ProducerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return nil, false
	}
	return &requestPayload, true
}

func (h *CatalogHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (*ProductRequest, bool) {
	var requestPayload ProductRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationErrors(w, err)
		return nil, false
	}
	if requestPayload.UnitPrice.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "unit_price cannot be negative")
		return nil, false
	}
	return &requestPayload, true
}

// Soft delete (deactivation) is the default; permanent removal is an explicit
// opt-in.
func deleteModeFromRequest(r *http.Request) baskets.DeleteMode {
	if r.URL.Query().Get("permanent") == "true" {
		return baskets.PermanentlyRemove
	}
	return baskets.Deactivate
}
