package stock

import (
	"context"
	"fmt"

	"tudogestao/internal/core/apperror"
	"tudogestao/internal/core/entity"
	"tudogestao/internal/core/id"
	"tudogestao/pkg/logger"
)

// Service records and queries stock movements.
// It does not open transactions: callers record movements inside their own.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Movement builds a journal line.
func Movement(companyID, recorderID id.ID, recorderType string, recordType entity.RecordType, productID id.ID, quantity int, reason string) entity.StockMovement {
	return entity.StockMovement{
		MovementBase: entity.NewMovementBase(companyID, recorderID, recorderType, recordType),
		ProductID:    productID,
		Quantity:     quantity,
		Reason:       reason,
	}
}

// RecordMovements validates and appends movements.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if m.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) || id.IsNil(m.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder and product are required", i))
		}
		if m.RecordType != entity.RecordTypeReceipt && m.RecordType != entity.RecordTypeExpense {
			return apperror.NewValidation(fmt.Sprintf("movement %d: unknown record type %q", i, m.RecordType))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
		"recorder_type", movements[0].RecorderType,
	)
	return nil
}

// History returns the movements of a product, newest first.
func (s *Service) History(ctx context.Context, companyID, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.GetMovementHistory(ctx, companyID, productID, filter)
}

// ForRecorder returns the movements written by one sale or operation.
func (s *Service) ForRecorder(ctx context.Context, companyID, recorderID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByRecorder(ctx, companyID, recorderID)
}
