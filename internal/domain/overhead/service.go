package overhead

import (
	"context"
	"fmt"
	"time"

	appcontext "swiftpos/internal/core/context"
	"swiftpos/internal/core/id"
	"swiftpos/internal/core/tx"
	"swiftpos/internal/core/types"
	"swiftpos/internal/domain"
)

// Totals feeds the overhead card on the dashboard.
type Totals struct {
	CapitalTotal          types.Money `json:"capitalOverheadTotal"`
	RecurringPrevMonth    types.Money `json:"recurringPrevMonthTotal"`
	RecurringCurrentMonth types.Money `json:"recurringCurrentMonthTotal"`
	GrandTotal            types.Money `json:"grandTotal"`
}

// Service manages overhead records and totals.
type Service struct {
	repo      Repository
	txManager tx.Manager

	// now is swapped in tests
	now func() time.Time
}

// NewService creates an overhead service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager, now: time.Now}
}

// Create validates and persists an overhead, generating a description when
// the caller left it blank.
func (s *Service) Create(ctx context.Context, o *Overhead) error {
	o.CreatedByName = appcontext.GetUser(ctx).DisplayName()
	if err := o.Validate(ctx); err != nil {
		return err
	}
	o.FillDescription()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create overhead: %w", err)
		}
		return nil
	})
}

// Update modifies an overhead record.
func (s *Service) Update(ctx context.Context, o *Overhead) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, o)
	})
}

// Get returns one overhead record.
func (s *Service) Get(ctx context.Context, overheadID id.ID) (*Overhead, error) {
	return s.repo.GetByID(ctx, overheadID)
}

// List returns overheads matching the filter, newest first.
func (s *Service) List(ctx context.Context, f Filter) (domain.ListResult[*Overhead], error) {
	return s.repo.List(ctx, f)
}

// CalculateTotals aggregates capital spend, the recurring shares falling
// into the current and previous month, and the all-time grand total.
func (s *Service) CalculateTotals(ctx context.Context) (*Totals, error) {
	now := s.now().UTC()
	prevYear, prevMonth := previousMonth(now.Year(), now.Month())

	capital, err := s.repo.SumByType(ctx, TypeCapital)
	if err != nil {
		return nil, err
	}
	grand, err := s.repo.SumByType(ctx, "")
	if err != nil {
		return nil, err
	}

	current, err := s.RecurringShareFor(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	prev, err := s.RecurringShareFor(ctx, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	return &Totals{
		CapitalTotal:          capital,
		RecurringPrevMonth:    types.RoundCents(prev),
		RecurringCurrentMonth: types.RoundCents(current),
		GrandTotal:            grand,
	}, nil
}

// RecurringShareFor sums the amortized recurring shares landing in the
// given month.
func (s *Service) RecurringShareFor(ctx context.Context, year int, month time.Month) (types.Money, error) {
	recurring, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return types.Zero(), err
	}

	total := types.Zero()
	for _, o := range recurring {
		total = total.Add(o.AmortizedFor(year, month))
	}
	return total, nil
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
