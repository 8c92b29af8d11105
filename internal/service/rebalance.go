// internal/service/rebalance.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/rebalancer/internal/cache"
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/andresuchdata/rebalancer/internal/engine"
	"github.com/andresuchdata/rebalancer/internal/repository"
	"github.com/rs/zerolog/log"
)

// Rebalancer is the single entry point of the rebalancing pipeline:
// ingestion, classification, cross-outlet matching, scoring, planning
// and execution, in one synchronous batch run.
type Rebalancer struct {
	cfg       *config.Config
	outlets   repository.OutletRepository
	sales     repository.SalesRepository
	analyzer  *engine.Analyzer
	scorer    *engine.Scorer
	planner   *engine.Planner
	executor  *Executor
	insights  *InsightsService
	lock      cache.RunLocker
	summaries cache.SummaryCache
}

func NewRebalancer(
	cfg *config.Config,
	outlets repository.OutletRepository,
	sales repository.SalesRepository,
	executor *Executor,
	insights *InsightsService,
	lock cache.RunLocker,
	summaries cache.SummaryCache,
) *Rebalancer {
	return &Rebalancer{
		cfg:       cfg,
		outlets:   outlets,
		sales:     sales,
		analyzer:  engine.NewAnalyzer(cfg.Rebalance),
		scorer:    engine.NewScorer(cfg.Rebalance),
		planner:   engine.NewPlanner(cfg.Rebalance),
		executor:  executor,
		insights:  insights,
		lock:      lock,
		summaries: summaries,
	}
}

// Run executes one full rebalancing pass and returns a counts-only
// summary. Live mode holds the run lock for the whole pass; overlapping
// live runs would double-allocate the same surplus.
func (r *Rebalancer) Run(ctx context.Context, dryRun bool) (*domain.RunSummary, error) {
	started := time.Now()

	if timeout := time.Duration(r.cfg.Rebalance.RunTimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if !dryRun {
		if err := r.lock.Acquire(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := r.lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("rebalance: failed to release run lock")
			}
		}()
	}

	outlets, err := r.outlets.ListActiveOutlets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list outlets: %w", err)
	}

	inventories, productIDs, err := r.loadInventories(ctx, outlets)
	if err != nil {
		return nil, err
	}

	outletIDs := make([]int64, len(outlets))
	for i, o := range outlets {
		outletIDs[i] = o.ID
	}

	velocities, err := r.sales.Velocities(ctx, outletIDs, productIDs,
		r.cfg.Rebalance.VelocityDays, r.cfg.Rebalance.TrendDays)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales velocities: %w", err)
	}

	for _, outlet := range outlets {
		r.analyzer.Analyze(outlet, inventories[outlet.ID], velocities)
	}

	matrix := engine.BuildProductMatrix(outlets, inventories)
	opportunities := r.findOpportunities(matrix)

	plan := r.planner.BuildPlan(opportunities)

	log.Info().
		Int("outlets", len(outlets)).
		Int("products", len(matrix)).
		Int("opportunities", len(opportunities)).
		Int("urgent", len(plan.Urgent)).
		Int("high", len(plan.High)).
		Int("normal", len(plan.Normal)).
		Bool("dry_run", dryRun).
		Msg("rebalance: plan built")

	execResult, err := r.executor.Execute(ctx, plan, dryRun)
	if err != nil {
		return nil, err
	}

	summary := &domain.RunSummary{
		StartedAt:        started,
		OutletCount:      len(outlets),
		ProductCount:     len(matrix),
		OpportunityCount: len(opportunities),
		Plan: domain.PlanSummary{
			Urgent: len(plan.Urgent),
			High:   len(plan.High),
			Normal: len(plan.Normal),
		},
		Execution: execResult,
	}

	if r.cfg.Insights.Enabled && r.insights != nil {
		report := r.insights.Generate(outlets, inventories)
		if err := r.insights.Publish(ctx, report); err != nil {
			log.Warn().Err(err).Msg("rebalance: insights publish failed")
		}
		summary.Insights = report.Stats()
	}

	summary.DurationMillis = time.Since(started).Milliseconds()

	if err := r.summaries.SetLatest(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("rebalance: failed to cache run summary")
	}

	return summary, nil
}

// loadInventories fetches each outlet's stock and collects the union
// of product ids, sorted for deterministic velocity batching.
func (r *Rebalancer) loadInventories(ctx context.Context, outlets []domain.Outlet) (map[int64][]*domain.InventoryItem, []string, error) {
	inventories := make(map[int64][]*domain.InventoryItem, len(outlets))
	productSet := make(map[string]struct{})

	for _, outlet := range outlets {
		items, err := r.outlets.OutletInventory(ctx, outlet.ID, r.cfg.Rebalance.InventoryBatch)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load inventory for outlet %d: %w", outlet.ID, err)
		}

		inventories[outlet.ID] = items
		for _, item := range items {
			productSet[item.ProductID] = struct{}{}
		}
	}

	productIDs := make([]string, 0, len(productSet))
	for id := range productSet {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	return inventories, productIDs, nil
}

// findOpportunities partitions each product's outlets into needy and
// surplus sets and scores every cross pair. Iteration is ordered by
// product id and outlet id so equal-urgency opportunities keep a
// stable order into planning.
func (r *Rebalancer) findOpportunities(matrix map[string]*domain.ProductMatrixEntry) []domain.Opportunity {
	productIDs := make([]string, 0, len(matrix))
	for id := range matrix {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	var opportunities []domain.Opportunity
	for _, productID := range productIDs {
		entry := matrix[productID]

		statuses := make([]*domain.OutletStatus, 0, len(entry.Outlets))
		for _, st := range entry.Outlets {
			statuses = append(statuses, st)
		}
		sort.Slice(statuses, func(i, j int) bool {
			return statuses[i].Outlet.ID < statuses[j].Outlet.ID
		})

		var needy, surplus []*domain.OutletStatus
		for _, st := range statuses {
			if st.Item.IsLow || (st.Item.IsHighDemand && st.Item.DaysOfStock < r.cfg.Rebalance.TargetDaysMin) {
				needy = append(needy, st)
			}
			if st.Item.IsOverstock {
				surplus = append(surplus, st)
			}
		}

		for _, to := range needy {
			for _, from := range surplus {
				if from.Outlet.ID == to.Outlet.ID {
					continue
				}

				opp, ok := r.scorer.Score(to, from, entry.SupplyPrice)
				if !ok {
					continue
				}
				opportunities = append(opportunities, opp)
			}
		}
	}

	return opportunities
}
