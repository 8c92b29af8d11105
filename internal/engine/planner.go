// internal/engine/planner.go
package engine

import (
	"sort"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
)

// Tier thresholds on the urgency score.
const (
	urgentThreshold = 80
	highThreshold   = 50
)

// Planner sorts scored opportunities and splits them into capped
// urgency tiers. Caps bound daily operational load on logistics staff.
type Planner struct {
	cfg config.RebalanceConfig
}

func NewPlanner(cfg config.RebalanceConfig) *Planner {
	return &Planner{cfg: cfg}
}

// BuildPlan returns the empty plan for empty input. Otherwise the
// opportunities are stable-sorted by urgency descending, bucketed by
// threshold preserving that order, and each tier truncated to its cap.
func (p *Planner) BuildPlan(opportunities []domain.Opportunity) domain.TransferPlan {
	var plan domain.TransferPlan
	if len(opportunities) == 0 {
		return plan
	}

	sorted := make([]domain.Opportunity, len(opportunities))
	copy(sorted, opportunities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UrgencyScore > sorted[j].UrgencyScore
	})

	for _, opp := range sorted {
		switch {
		case opp.UrgencyScore >= urgentThreshold:
			plan.Urgent = append(plan.Urgent, opp)
		case opp.UrgencyScore >= highThreshold:
			plan.High = append(plan.High, opp)
		default:
			plan.Normal = append(plan.Normal, opp)
		}
	}

	plan.Urgent = capTier(plan.Urgent, p.cfg.UrgentCap)
	plan.High = capTier(plan.High, p.cfg.HighCap)
	plan.Normal = capTier(plan.Normal, p.cfg.NormalCap)

	return plan
}

func capTier(tier []domain.Opportunity, limit int) []domain.Opportunity {
	if limit > 0 && len(tier) > limit {
		return tier[:limit]
	}
	return tier
}
