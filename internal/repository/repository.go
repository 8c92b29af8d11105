// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/rebalancer/internal/domain"
)

// OutletRepository reads outlet reference data and per-outlet stock.
type OutletRepository interface {
	// ListActiveOutlets returns all active outlets, ordered by name.
	ListActiveOutlets(ctx context.Context) ([]domain.Outlet, error)

	// OutletInventory returns the outlet's items with inventory_level > 0,
	// joined to current supply/retail price, capped at limit rows.
	OutletInventory(ctx context.Context, outletID int64, limit int) ([]*domain.InventoryItem, error)
}

// SalesRepository computes sales velocities from closed sale lines.
type SalesRepository interface {
	// Velocities returns daily (short window) and weekly (long-window
	// daily-equivalent x7) rates per outlet+product. Pairs with no
	// matching sales are absent from the map.
	Velocities(ctx context.Context, outletIDs []int64, productIDs []string, velocityDays, trendDays int) (domain.VelocityMap, error)
}

// ExecutionRepository persists planned transfers.
type ExecutionRepository interface {
	// SaveTransfer inserts the execution header and its allocation
	// atomically. On success exec.ID and alloc.ExecutionID are set.
	SaveTransfer(ctx context.Context, exec *domain.Execution, alloc *domain.Allocation) error
}
