// internal/engine/matrix.go
package engine

import "github.com/andresuchdata/rebalancer/internal/domain"

// BuildProductMatrix reshapes per-outlet analyzed items into a
// per-product, cross-outlet status view. The supply price is carried
// from the first instance seen; prices are assumed consistent across
// outlets within a run.
func BuildProductMatrix(outlets []domain.Outlet, inventories map[int64][]*domain.InventoryItem) map[string]*domain.ProductMatrixEntry {
	matrix := make(map[string]*domain.ProductMatrixEntry)

	for i := range outlets {
		outlet := &outlets[i]
		for _, item := range inventories[outlet.ID] {
			entry, ok := matrix[item.ProductID]
			if !ok {
				entry = &domain.ProductMatrixEntry{
					ProductID:   item.ProductID,
					SupplyPrice: item.SupplyPrice,
					Outlets:     make(map[int64]*domain.OutletStatus),
				}
				matrix[item.ProductID] = entry
			}

			entry.Outlets[outlet.ID] = &domain.OutletStatus{
				Outlet: outlet,
				Item:   item,
			}
		}
	}

	return matrix
}
