// internal/engine/analyzer.go
package engine

import (
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
)

// MinVelocityFloor substitutes for zero or near-zero velocity wherever
// a rate appears in a denominator or a retention buffer, keeping the
// math total over its domain.
const MinVelocityFloor = 0.1

// Analyzer classifies a single outlet's stock positions against the
// configured thresholds. Pure computation, no I/O.
type Analyzer struct {
	cfg config.RebalanceConfig
}

func NewAnalyzer(cfg config.RebalanceConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze mutates items in place with velocity, days-of-stock and the
// low / overstock / high-demand flags, and returns the same slice.
// Missing velocity entries default to zero.
func (a *Analyzer) Analyze(outlet domain.Outlet, items []*domain.InventoryItem, velocities domain.VelocityMap) []*domain.InventoryItem {
	byProduct := velocities[outlet.ID]

	for _, item := range items {
		v := byProduct[item.ProductID] // zero value when absent

		item.DailyVelocity = v.Daily
		item.WeeklyVelocity = v.Weekly
		item.DaysOfStock = DaysOfStock(item.InventoryLevel, v.Daily)
		item.IsLow = item.DaysOfStock <= a.cfg.LowStockDays
		item.IsOverstock = item.DaysOfStock >= a.cfg.OverstockDays

		// The trend rate is the long-window weekly figure converted
		// back to a daily equivalent. High demand means the short
		// window is running ahead of that trend by the configured
		// multiplier.
		trendDaily := v.Weekly / 7
		item.IsHighDemand = trendDaily > 0 && v.Daily > trendDaily*a.cfg.HighDemandMultiplier
	}

	return items
}

// DaysOfStock estimates days until stockout. Zero velocity is floored
// so the result is a large finite number rather than Inf or NaN.
func DaysOfStock(inventoryLevel int, dailyVelocity float64) float64 {
	if dailyVelocity < MinVelocityFloor {
		dailyVelocity = MinVelocityFloor
	}
	return float64(inventoryLevel) / dailyVelocity
}
