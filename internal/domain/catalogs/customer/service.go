package customer

import (
	"context"
	"fmt"
	"sort"

	"swiftpos/internal/core/tx"
	"swiftpos/internal/domain"
	"swiftpos/pkg/logger"
)

const badgeRankLimit = 10

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
	repo Repository
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "customer",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// UpdateBadges recomputes customer badges from purchase volume.
// Customers are scored by total amount plus ten points per purchased unit;
// the top ten become Top, the bottom ten Low, the rest Normal.
func (s *Service) UpdateBadges(ctx context.Context) error {
	volumes, err := s.repo.RankByPurchaseVolume(ctx)
	if err != nil {
		return fmt.Errorf("rank customers: %w", err)
	}

	total := len(volumes)
	if total == 0 {
		return nil
	}

	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i].Score() > volumes[j].Score()
	})

	for i, v := range volumes {
		rank := i + 1
		var badge Badge
		switch {
		case rank <= badgeRankLimit:
			badge = BadgeTop
		case rank > total-badgeRankLimit:
			badge = BadgeLow
		default:
			badge = BadgeNormal
		}

		if err := s.repo.SetBadge(ctx, v.CustomerID, badge); err != nil {
			logger.Warn(ctx, "set customer badge failed", "customer_id", v.CustomerID, "error", err)
		}
	}

	return nil
}
