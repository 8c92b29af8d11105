// internal/domain/models.go
package domain

import "time"

// Outlet represents a physical store location. Loaded once per run and
// treated as read-only reference data afterwards.
type Outlet struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	State string `json:"state" db:"physical_address_state"`
}

// InventoryItem is one product's stock position at a single outlet.
// The repository fills identity, level and prices; the analyzer adds
// the velocity and classification fields in place. Items live for a
// single run and are never persisted.
type InventoryItem struct {
	ProductID      string  `json:"product_id" db:"product_id"`
	InventoryLevel int     `json:"inventory_level" db:"inventory_level"`
	SupplyPrice    float64 `json:"supply_price" db:"supply_price"`
	RetailPrice    float64 `json:"retail_price" db:"retail_price"`

	DailyVelocity  float64 `json:"daily_velocity" db:"-"`
	WeeklyVelocity float64 `json:"weekly_velocity" db:"-"`
	DaysOfStock    float64 `json:"days_of_stock" db:"-"`
	IsLow          bool    `json:"is_low" db:"-"`
	IsOverstock    bool    `json:"is_overstock" db:"-"`
	IsHighDemand   bool    `json:"is_high_demand" db:"-"`
}

// Velocity holds the two sales rates for one outlet+product pair:
// Daily from the short window, Weekly as the daily-equivalent of the
// long trend window multiplied by 7 for comparability.
type Velocity struct {
	Daily  float64 `json:"daily"`
	Weekly float64 `json:"weekly"`
}

// VelocityMap is keyed by outlet id then product id. Pairs with no
// closed sales in the window are simply absent; callers default to zero.
type VelocityMap map[int64]map[string]Velocity

// OutletStatus is a read view of one analyzed item together with the
// outlet it belongs to.
type OutletStatus struct {
	Outlet *Outlet        `json:"outlet"`
	Item   *InventoryItem `json:"item"`
}

// ProductMatrixEntry is the cross-outlet status of a single product.
// The supply price is carried from the first-seen instance; prices are
// assumed consistent across outlets within a run.
type ProductMatrixEntry struct {
	ProductID   string                  `json:"product_id"`
	SupplyPrice float64                 `json:"supply_price"`
	Outlets     map[int64]*OutletStatus `json:"outlets"`
}

// Opportunity is one candidate transfer of a single product from a
// surplus outlet to a needy one. FromOutlet != ToOutlet always holds.
type Opportunity struct {
	ProductID      string  `json:"product_id"`
	FromOutlet     *Outlet `json:"from_outlet"`
	ToOutlet       *Outlet `json:"to_outlet"`
	RecommendedQty int     `json:"recommended_qty"`
	TransferValue  float64 `json:"transfer_value"`
	UrgencyScore   int     `json:"urgency_score"`
	Reason         string  `json:"reason"`
	FromDays       float64 `json:"from_days"`
	ToDays         float64 `json:"to_days"`
}

// TransferPlan buckets scored opportunities into capped urgency tiers,
// each ordered by descending urgency.
type TransferPlan struct {
	Urgent []Opportunity `json:"urgent"`
	High   []Opportunity `json:"high"`
	Normal []Opportunity `json:"normal"`
}

// Total returns the number of opportunities across all tiers.
func (p TransferPlan) Total() int {
	return len(p.Urgent) + len(p.High) + len(p.Normal)
}

// ExecutionResult reports what the execution step did (or would have
// done, in dry-run mode).
type ExecutionResult struct {
	Executed    int  `json:"executed"`
	Allocations int  `json:"allocations"`
	DryRun      bool `json:"dry_run"`
}

// PlanSummary carries per-tier counts without the full payloads.
type PlanSummary struct {
	Urgent int `json:"urgent"`
	High   int `json:"high"`
	Normal int `json:"normal"`
}

// RunSummary is the orchestrator's return value. Deliberately counts
// only; full opportunity and plan payloads stay inside the run.
type RunSummary struct {
	StartedAt        time.Time       `json:"started_at"`
	DurationMillis   int64           `json:"duration_millis"`
	OutletCount      int             `json:"outlet_count"`
	ProductCount     int             `json:"product_count"`
	OpportunityCount int             `json:"opportunity_count"`
	Plan             PlanSummary     `json:"plan"`
	Execution        ExecutionResult `json:"execution"`
	Insights         *InsightsStats  `json:"insights,omitempty"`
}
