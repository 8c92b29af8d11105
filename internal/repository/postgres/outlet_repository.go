// internal/repository/postgres/outlet_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/rebalancer/internal/domain"
)

type outletRepository struct {
	db *DB
}

func NewOutletRepository(db *DB) *outletRepository {
	return &outletRepository{db: db}
}

func (r *outletRepository) ListActiveOutlets(ctx context.Context) ([]domain.Outlet, error) {
	query := `
		SELECT id, name, COALESCE(physical_address_state, '') AS physical_address_state
		FROM outlets
		WHERE is_active = true
		ORDER BY name
	`

	var outlets []domain.Outlet
	if err := r.db.SelectContext(ctx, &outlets, query); err != nil {
		return nil, fmt.Errorf("error listing active outlets: %w", err)
	}

	return outlets, nil
}

func (r *outletRepository) OutletInventory(ctx context.Context, outletID int64, limit int) ([]*domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 500
	}

	// Only positive stock positions are candidates for rebalancing.
	// The limit bounds result size on large catalogs.
	query := `
		SELECT
			oi.product_id,
			oi.inventory_level,
			COALESCE(p.supply_price, 0) AS supply_price,
			COALESCE(p.retail_price, 0) AS retail_price
		FROM outlet_inventory oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.outlet_id = $1
		  AND oi.inventory_level > 0
		  AND p.is_active = true
		ORDER BY oi.inventory_level DESC
		LIMIT $2
	`

	var items []*domain.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, outletID, limit); err != nil {
		return nil, fmt.Errorf("error loading inventory for outlet %d: %w", outletID, err)
	}

	return items, nil
}
