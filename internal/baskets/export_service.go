package baskets

import (
	"context"
	"fmt"
)

// ExportService is the read-side for staff exports: aggregated amounts and
// quantities over persisted order data. File rendering (xlsx) belongs to the
// external export collaborator.
type ExportService interface {
	OrderAmountsByUserAndMonth(ctx context.Context) ([]UserMonthAmount, error)
	ProducerQuantitiesByMonth(ctx context.Context) ([]ProducerMonthQuantity, error)
}

type exportService struct {
	repo Repository
}

func NewExportService(repo Repository) ExportService {
	return &exportService{repo: repo}
}

func (s *exportService) OrderAmountsByUserAndMonth(ctx context.Context) ([]UserMonthAmount, error) {
	rows, err := s.repo.OrderAmountsByUserAndMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to export order amounts: %w", err)
	}
	return rows, nil
}

func (s *exportService) ProducerQuantitiesByMonth(ctx context.Context) ([]ProducerMonthQuantity, error) {
	rows, err := s.repo.ProducerQuantitiesByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to export producer quantities: %w", err)
	}
	return rows, nil
}
