// internal/repository/postgres/execution_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/rebalancer/internal/domain"
)

type executionRepository struct {
	db *DB
}

func NewExecutionRepository(db *DB) *executionRepository {
	return &executionRepository{db: db}
}

// SaveTransfer writes the execution header and its allocation in one
// transaction so a failed allocation insert cannot orphan a header.
func (r *executionRepository) SaveTransfer(ctx context.Context, exec *domain.Execution, alloc *domain.Allocation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		headerQuery := `
			INSERT INTO executions (public_id, alias, simulation, status, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		now := time.Now()
		err := tx.QueryRowContext(ctx, headerQuery,
			exec.PublicID,
			exec.Alias,
			exec.Simulation,
			exec.Status,
			exec.CreatedBy,
			now,
		).Scan(&exec.ID)
		if err != nil {
			return fmt.Errorf("failed to insert execution %s: %w", exec.PublicID, err)
		}
		exec.CreatedAt = now

		alloc.ExecutionID = exec.ID

		allocQuery := `
			INSERT INTO allocations (execution_id, product_id, quantity, calculation, public_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		err = tx.QueryRowContext(ctx, allocQuery,
			alloc.ExecutionID,
			alloc.ProductID,
			alloc.Quantity,
			alloc.Calculation,
			alloc.PublicID,
			now,
		).Scan(&alloc.ID)
		if err != nil {
			return fmt.Errorf("failed to insert allocation for product %s: %w", alloc.ProductID, err)
		}
		alloc.CreatedAt = now

		return nil
	})
}
