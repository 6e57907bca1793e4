package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
)

// ExportHandler serves the aggregated read-side consumed by the spreadsheet
// export tooling.
type ExportHandler struct {
	service baskets.ExportService
}

func NewExportHandler(service baskets.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

func (h *ExportHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/export/orders", h.handleOrderAmounts)
	router.Get("/export/producers", h.handleProducerQuantities)
}

func (h *ExportHandler) handleOrderAmounts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.OrderAmountsByUserAndMonth(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to export order amounts")
		respondWithError(w, http.StatusInternalServerError, "Failed to export order amounts")
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}

func (h *ExportHandler) handleProducerQuantities(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ProducerQuantitiesByMonth(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to export producer quantities")
		respondWithError(w, http.StatusInternalServerError, "Failed to export producer quantities")
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}
