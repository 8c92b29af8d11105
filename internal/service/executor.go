// internal/service/executor.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/andresuchdata/rebalancer/internal/repository"
	"github.com/google/uuid"
)

const executionActor = "rebalancer"

// Executor persists a transfer plan. Dry-run mode is the default and
// performs no writes at all; live mode must be opted into explicitly.
type Executor struct {
	repo repository.ExecutionRepository
	now  func() time.Time
}

func NewExecutor(repo repository.ExecutionRepository) *Executor {
	return &Executor{repo: repo, now: time.Now}
}

// Execute walks the plan urgent first and writes one execution header
// plus one allocation per opportunity. A failed insert aborts the run
// with outlet and product context; rows already committed stand.
func (e *Executor) Execute(ctx context.Context, plan domain.TransferPlan, dryRun bool) (domain.ExecutionResult, error) {
	result := domain.ExecutionResult{DryRun: dryRun}
	if dryRun {
		return result, nil
	}

	tiers := []struct {
		name string
		opps []domain.Opportunity
	}{
		{"urgent", plan.Urgent},
		{"high", plan.High},
		{"normal", plan.Normal},
	}

	for _, tier := range tiers {
		for _, opp := range tier.opps {
			if err := e.saveOpportunity(ctx, tier.name, opp); err != nil {
				return result, err
			}
			result.Executed++
			result.Allocations++
		}
	}

	return result, nil
}

func (e *Executor) saveOpportunity(ctx context.Context, tier string, opp domain.Opportunity) error {
	calc, err := json.Marshal(domain.AllocationCalc{
		Reason:  opp.Reason,
		Urgency: opp.UrgencyScore,
		From:    opp.FromOutlet.Name,
		To:      opp.ToOutlet.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to encode calculation for product %s: %w", opp.ProductID, err)
	}

	exec := &domain.Execution{
		PublicID:   uuid.NewString(),
		Alias:      e.alias(tier),
		Simulation: false,
		Status:     domain.ExecutionStatusPending,
		CreatedBy:  executionActor,
	}

	alloc := &domain.Allocation{
		ProductID:   opp.ProductID,
		Quantity:    opp.RecommendedQty,
		Calculation: calc,
		PublicID:    uuid.NewString(),
	}

	if err := e.repo.SaveTransfer(ctx, exec, alloc); err != nil {
		return fmt.Errorf("failed to persist transfer of product %s from outlet %d to outlet %d: %w",
			opp.ProductID, opp.FromOutlet.ID, opp.ToOutlet.ID, err)
	}

	return nil
}

// alias encodes the tier and timestamp into a human-scannable handle,
// e.g. REBAL-URGENT-20260901-153000.
func (e *Executor) alias(tier string) string {
	return fmt.Sprintf("REBAL-%s-%s", strings.ToUpper(tier), e.now().Format("20060102-150405"))
}
