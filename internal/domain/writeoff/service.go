package writeoff

import (
	"context"

	"swiftpos/internal/core/apperror"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
)

// Service exposes the write-off ledger for reading. Records are created
// by the stock adjustment workflow, never directly.
type Service struct {
	repo Repository
}

// NewService creates a new write-off service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves one write-off record.
func (s *Service) Get(ctx context.Context, writeOffID id.ID) (*WriteOff, error) {
	w, err := s.repo.GetByID(ctx, writeOffID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("write-off", writeOffID.String())
		}
		return nil, err
	}
	return w, nil
}

// List retrieves write-offs matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*WriteOff], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// TotalLoss sums the loss value over the filtered records.
func (s *Service) TotalLoss(ctx context.Context, filter Filter) (types.Money, error) {
	return s.repo.TotalLoss(ctx, filter)
}
