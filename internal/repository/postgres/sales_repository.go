// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/lib/pq"
)

// productChunkSize bounds the product id array passed to a single
// velocity query.
const productChunkSize = 400

type salesRepository struct {
	db  *DB
	now func() time.Time
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db, now: time.Now}
}

type velocityRow struct {
	OutletID  int64   `db:"outlet_id"`
	ProductID string  `db:"product_id"`
	RecentQty float64 `db:"recent_qty"`
	TrendQty  float64 `db:"trend_qty"`
}

func (r *salesRepository) Velocities(ctx context.Context, outletIDs []int64, productIDs []string, velocityDays, trendDays int) (domain.VelocityMap, error) {
	result := make(domain.VelocityMap)
	if len(outletIDs) == 0 || len(productIDs) == 0 {
		return result, nil
	}
	if velocityDays <= 0 {
		velocityDays = 14
	}
	if trendDays <= 0 {
		trendDays = 56
	}

	now := r.now()
	trendStart := now.AddDate(0, 0, -trendDays)
	recentStart := now.AddDate(0, 0, -velocityDays)

	// One aggregate per outlet+product over the trend window, with the
	// short window carved out via FILTER so both rates come from a
	// single pass over the sale lines.
	query := `
		SELECT
			s.outlet_id,
			li.product_id,
			COALESCE(SUM(li.quantity) FILTER (WHERE s.sale_date >= $2), 0) AS recent_qty,
			COALESCE(SUM(li.quantity), 0) AS trend_qty
		FROM sale_line_items li
		JOIN sales s ON s.id = li.sale_id
		WHERE s.status = 'CLOSED'
		  AND s.is_return = false
		  AND li.quantity > 0
		  AND s.sale_date >= $1
		  AND s.outlet_id = ANY($3::bigint[])
		  AND li.product_id = ANY($4::text[])
		GROUP BY s.outlet_id, li.product_id
	`

	for _, chunk := range chunkStrings(productIDs, productChunkSize) {
		var rows []velocityRow
		err := r.db.SelectContext(ctx, &rows, query,
			trendStart, recentStart, pq.Array(outletIDs), pq.Array(chunk))
		if err != nil {
			return nil, fmt.Errorf("error querying sales velocities: %w", err)
		}

		for _, row := range rows {
			byProduct, ok := result[row.OutletID]
			if !ok {
				byProduct = make(map[string]domain.Velocity)
				result[row.OutletID] = byProduct
			}

			byProduct[row.ProductID] = domain.Velocity{
				Daily:  row.RecentQty / float64(velocityDays),
				Weekly: row.TrendQty / float64(trendDays) * 7,
			}
		}
	}

	return result, nil
}

// chunkStrings splits values into slices of at most size elements.
func chunkStrings(values []string, size int) [][]string {
	if size <= 0 {
		return [][]string{values}
	}

	var chunks [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
