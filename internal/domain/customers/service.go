package customers

import (
	"context"
	"fmt"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain"
	"tudogestao/internal/domain/audit"
	"tudogestao/pkg/logger"
)

type Service struct {
	repo  Repository
	audit *audit.Recorder
}

func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	s.audit.Record(ctx, audit.ActionCreate, EntityName, c.ID, map[string]any{"name": c.Name})
	logger.Info(ctx, "customer created", "id", c.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, companyID, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, companyID, customerID)
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter.Normalize())
}
