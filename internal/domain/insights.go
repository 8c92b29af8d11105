// internal/domain/insights.go
package domain

import "time"

// ProductSignal is one flagged outlet+product observation inside an
// insights report.
type ProductSignal struct {
	OutletID       int64   `json:"outlet_id"`
	OutletName     string  `json:"outlet_name"`
	ProductID      string  `json:"product_id"`
	InventoryLevel int     `json:"inventory_level"`
	DailyVelocity  float64 `json:"daily_velocity"`
	DaysOfStock    float64 `json:"days_of_stock"`
}

// InsightsReport aggregates classification results across all outlets.
// Written as a JSON snapshot for downstream personalization; consumers
// are unspecified and the write is best effort.
type InsightsReport struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	HighDemand      []ProductSignal `json:"high_demand"`
	LowStock        []ProductSignal `json:"low_stock"`
	Overstock       []ProductSignal `json:"overstock"`
	VelocityLeaders []ProductSignal `json:"velocity_leaders"`
}

// InsightsStats is the counts-only view of a report carried on the
// run summary.
type InsightsStats struct {
	HighDemand      int `json:"high_demand"`
	LowStock        int `json:"low_stock"`
	Overstock       int `json:"overstock"`
	VelocityLeaders int `json:"velocity_leaders"`
}

// Stats returns the counts-only view of the report.
func (r *InsightsReport) Stats() *InsightsStats {
	if r == nil {
		return nil
	}
	return &InsightsStats{
		HighDemand:      len(r.HighDemand),
		LowStock:        len(r.LowStock),
		Overstock:       len(r.Overstock),
		VelocityLeaders: len(r.VelocityLeaders),
	}
}
