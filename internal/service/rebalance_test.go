package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/andresuchdata/rebalancer/internal/cache"
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutletRepo struct {
	outlets   []domain.Outlet
	items     map[int64][]*domain.InventoryItem
	invErr    error
	gotLimits []int
}

func (f *fakeOutletRepo) ListActiveOutlets(ctx context.Context) ([]domain.Outlet, error) {
	return f.outlets, nil
}

func (f *fakeOutletRepo) OutletInventory(ctx context.Context, outletID int64, limit int) ([]*domain.InventoryItem, error) {
	if f.invErr != nil {
		return nil, f.invErr
	}
	f.gotLimits = append(f.gotLimits, limit)
	return f.items[outletID], nil
}

type fakeSalesRepo struct {
	velocities  domain.VelocityMap
	err         error
	gotOutlets  []int64
	gotProducts []string
}

func (f *fakeSalesRepo) Velocities(ctx context.Context, outletIDs []int64, productIDs []string, velocityDays, trendDays int) (domain.VelocityMap, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotOutlets = outletIDs
	f.gotProducts = productIDs
	return f.velocities, nil
}

type fakeLocker struct {
	acquired   int
	released   int
	acquireErr error
}

func (f *fakeLocker) Acquire(ctx context.Context) error {
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.acquired++
	return nil
}

func (f *fakeLocker) Release(ctx context.Context) error {
	f.released++
	return nil
}

// fixture: outlet 1 is stocked out of SKU-1 while outlet 2 sits on a
// deep surplus; SKU-2 is healthy everywhere.
func rebalanceFixture() (*fakeOutletRepo, *fakeSalesRepo) {
	outlets := &fakeOutletRepo{
		outlets: []domain.Outlet{
			{ID: 1, Name: "Downtown", State: "VIC"},
			{ID: 2, Name: "Warehouse East", State: "NSW"},
		},
		items: map[int64][]*domain.InventoryItem{
			1: {
				{ProductID: "SKU-1", InventoryLevel: 0, SupplyPrice: 10, RetailPrice: 25},
				{ProductID: "SKU-2", InventoryLevel: 100, SupplyPrice: 5, RetailPrice: 12},
			},
			2: {
				{ProductID: "SKU-1", InventoryLevel: 200, SupplyPrice: 10, RetailPrice: 25},
				{ProductID: "SKU-2", InventoryLevel: 90, SupplyPrice: 5, RetailPrice: 12},
			},
		},
	}

	sales := &fakeSalesRepo{
		velocities: domain.VelocityMap{
			1: {
				"SKU-1": {Daily: 5, Weekly: 35},
				"SKU-2": {Daily: 2, Weekly: 14},
			},
			2: {
				"SKU-1": {Daily: 0.5, Weekly: 3.5},
				"SKU-2": {Daily: 2, Weekly: 14},
			},
		},
	}

	return outlets, sales
}

func testConfig() *config.Config {
	return &config.Config{
		Rebalance: config.DefaultRebalanceConfig(),
	}
}

func newTestRebalancer(cfg *config.Config, outlets *fakeOutletRepo, sales *fakeSalesRepo, execRepo *fakeExecutionRepo, locker cache.RunLocker) *Rebalancer {
	return NewRebalancer(
		cfg,
		outlets,
		sales,
		NewExecutor(execRepo),
		NewInsightsService(cfg.Insights, nil),
		locker,
		cache.NewNoopSummaryCache(),
	)
}

func TestRun_DryRunFindsOpportunityWithoutWrites(t *testing.T) {
	outlets, sales := rebalanceFixture()
	execRepo := &fakeExecutionRepo{}
	locker := &fakeLocker{}
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, execRepo, locker)

	summary, err := rebalancer.Run(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.OutletCount)
	assert.Equal(t, 2, summary.ProductCount)
	assert.Equal(t, 1, summary.OpportunityCount, "only the stocked-out SKU-1 should move")
	assert.Equal(t, domain.PlanSummary{Urgent: 1}, summary.Plan)
	assert.Equal(t, domain.ExecutionResult{Executed: 0, Allocations: 0, DryRun: true}, summary.Execution)

	assert.Empty(t, execRepo.saved, "dry run must not persist transfers")
	assert.Zero(t, locker.acquired, "dry run needs no lock")

	// velocity batching receives every outlet and the sorted product union
	assert.Equal(t, []int64{1, 2}, sales.gotOutlets)
	assert.Equal(t, []string{"SKU-1", "SKU-2"}, sales.gotProducts)
}

func TestRun_LiveModePersistsAndLocks(t *testing.T) {
	outlets, sales := rebalanceFixture()
	execRepo := &fakeExecutionRepo{}
	locker := &fakeLocker{}
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, execRepo, locker)

	summary, err := rebalancer.Run(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionResult{Executed: 1, Allocations: 1, DryRun: false}, summary.Execution)
	require.Len(t, execRepo.saved, 1)

	saved := execRepo.saved[0]
	assert.Equal(t, "SKU-1", saved.alloc.ProductID)
	// neededQty = 7*5 - 0 = 35, canSpare = 200 - 14*0.5 = 193
	assert.Equal(t, 35, saved.alloc.Quantity)

	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
}

func TestRun_NoSelfTransfers(t *testing.T) {
	outlets, sales := rebalanceFixture()
	execRepo := &fakeExecutionRepo{}
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, execRepo, &fakeLocker{})

	_, err := rebalancer.Run(context.Background(), false)
	require.NoError(t, err)

	for _, saved := range execRepo.saved {
		var calc domain.AllocationCalc
		require.NoError(t, json.Unmarshal(saved.alloc.Calculation, &calc))
		assert.NotEqual(t, calc.From, calc.To, "an outlet must never transfer to itself")
	}
}

func TestRun_ConcurrentLiveRunRejected(t *testing.T) {
	outlets, sales := rebalanceFixture()
	execRepo := &fakeExecutionRepo{}
	locker := &fakeLocker{acquireErr: cache.ErrRunInProgress}
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, execRepo, locker)

	_, err := rebalancer.Run(context.Background(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, cache.ErrRunInProgress)
	assert.Empty(t, execRepo.saved)
}

func TestRun_InventoryErrorAbortsRun(t *testing.T) {
	outlets, sales := rebalanceFixture()
	outlets.invErr = errors.New("connection reset")
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, &fakeExecutionRepo{}, &fakeLocker{})

	_, err := rebalancer.Run(context.Background(), true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outlet")
}

func TestRun_VelocityErrorAbortsRun(t *testing.T) {
	outlets, sales := rebalanceFixture()
	sales.err = errors.New("query timeout")
	rebalancer := newTestRebalancer(testConfig(), outlets, sales, &fakeExecutionRepo{}, &fakeLocker{})

	_, err := rebalancer.Run(context.Background(), true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "velocities")
}

func TestRun_InsightsAreBestEffort(t *testing.T) {
	outlets, sales := rebalanceFixture()
	cfg := testConfig()
	cfg.Insights = config.InsightsConfig{Enabled: true, Dir: t.TempDir()}
	rebalancer := newTestRebalancer(cfg, outlets, sales, &fakeExecutionRepo{}, &fakeLocker{})

	summary, err := rebalancer.Run(context.Background(), true)

	require.NoError(t, err)
	require.NotNil(t, summary.Insights)
	assert.Equal(t, 1, summary.Insights.LowStock, "stocked-out SKU-1 at outlet 1")
	assert.Equal(t, 1, summary.Insights.Overstock, "surplus SKU-1 at outlet 2")
	assert.Equal(t, 4, summary.Insights.VelocityLeaders)
}
