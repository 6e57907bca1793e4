package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
)

// userIDHeader carries the authenticated user's id, set by the auth layer in
// front of this service.
const userIDHeader = "X-User-ID"

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithValidationErrors(w http.ResponseWriter, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}
	respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Validation failed",
		Details: formatValidationErrors(validationErrors),
	})
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		details[fieldError.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldError.Tag())
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, baskets.ErrProducerNotFound),
		errors.Is(err, baskets.ErrProductNotFound),
		errors.Is(err, baskets.ErrDeliveryNotFound),
		errors.Is(err, baskets.ErrOrderNotFound),
		errors.Is(err, baskets.ErrOrderItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, baskets.ErrDuplicateOrder),
		errors.Is(err, baskets.ErrDuplicateDeliveryDate),
		errors.Is(err, baskets.ErrDeliveryHasOrders):
		return http.StatusConflict
	case errors.Is(err, baskets.ErrDeliveryClosed),
		errors.Is(err, baskets.ErrInactiveProduct),
		errors.Is(err, baskets.ErrNoItems),
		errors.Is(err, baskets.ErrInvalidItem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.FromString(r.Header.Get(userIDHeader))
}
