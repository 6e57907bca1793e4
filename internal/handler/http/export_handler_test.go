package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/baskets-service/internal/baskets"
)

func exportRouter(service baskets.ExportService) chi.Router {
	handler := NewExportHandler(service)
	router := chi.NewRouter()
	handler.RegisterAdminRoutes(router)
	return router
}

func TestExportHandler_OrderAmounts(t *testing.T) {
	service := new(mockExportService)
	rows := []baskets.UserMonthAmount{{
		UserID: uuid.Must(uuid.NewV4()),
		Year:   2026,
		Month:  6,
		Amount: decimal.RequireFromString("42.50"),
	}}
	service.On("OrderAmountsByUserAndMonth", mock.Anything).Return(rows, nil).Once()
	router := exportRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/export/orders", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var responsePayload []baskets.UserMonthAmount
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &responsePayload))
	require.Len(t, responsePayload, 1)
	assert.Equal(t, rows[0].UserID, responsePayload[0].UserID)
	assert.True(t, responsePayload[0].Amount.Equal(rows[0].Amount))
	service.AssertExpectations(t)
}

func TestExportHandler_ProducerQuantities(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := new(mockExportService)
		rows := []baskets.ProducerMonthQuantity{{
			ProducerID:   uuid.Must(uuid.NewV4()),
			ProducerName: "Ferme du Vallon",
			ProductID:    uuid.Must(uuid.NewV4()),
			ProductName:  "Eggs",
			Year:         2026,
			Month:        6,
			Quantity:     12,
		}}
		service.On("ProducerQuantitiesByMonth", mock.Anything).Return(rows, nil).Once()
		router := exportRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/export/producers", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var responsePayload []baskets.ProducerMonthQuantity
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &responsePayload))
		require.Len(t, responsePayload, 1)
		assert.Equal(t, "Eggs", responsePayload[0].ProductName)
		service.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		service := new(mockExportService)
		service.On("ProducerQuantitiesByMonth", mock.Anything).Return(nil, errors.New("connection lost")).Once()
		router := exportRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/export/producers", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		service.AssertExpectations(t)
	})
}
