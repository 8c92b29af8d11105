// internal/engine/scoring.go
package engine

import (
	"math"
	"strings"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
)

// Urgency contributions. The score is additive; the labels of the
// triggered contributions become the opportunity reason.
const (
	scoreCritical = 100 // needy outlet has a day or less of stock
	scoreLow      = 50  // needy outlet is under the low-stock threshold
	scoreDemand   = 30  // needy outlet is running ahead of trend
	scoreSurplus  = 20  // source outlet is overstocked
)

// Scorer turns one (needy, surplus) outlet pair for a product into a
// transfer recommendation.
type Scorer struct {
	cfg config.RebalanceConfig
}

func NewScorer(cfg config.RebalanceConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the recommended quantity, value and urgency for
// moving product stock from surplus to needy. ok is false when the
// quantity rounds to zero or the value falls under the configured
// floor; such pairs produce no opportunity.
func (s *Scorer) Score(needy, surplus *domain.OutletStatus, supplyPrice float64) (domain.Opportunity, bool) {
	// 1. Quantity the needy outlet is short of its target cover
	neededQty := math.Max(0, s.cfg.TargetDaysMin*needy.Item.DailyVelocity-float64(needy.Item.InventoryLevel))

	// 2. Quantity the source can give up while retaining its keep-days
	// buffer; the velocity floor keeps the buffer meaningful for
	// near-dead stock
	sourceVelocity := math.Max(surplus.Item.DailyVelocity, MinVelocityFloor)
	canSpare := math.Max(0, float64(surplus.Item.InventoryLevel)-s.cfg.SourceKeepDays*sourceVelocity)

	// 3. Recommend whole units only
	recommendedQty := int(math.Floor(math.Min(neededQty, canSpare)))
	transferValue := float64(recommendedQty) * supplyPrice

	// 4. Additive urgency score with reason labels, in fixed order so
	// equal situations always tie-break identically in planning
	var (
		score   int
		reasons []string
	)

	if needy.Item.DaysOfStock <= 1 {
		score += scoreCritical
		reasons = append(reasons, "CRITICAL")
	} else if needy.Item.DaysOfStock <= s.cfg.LowStockDays {
		score += scoreLow
		reasons = append(reasons, "LOW")
	}

	if needy.Item.IsHighDemand {
		score += scoreDemand
		reasons = append(reasons, "DEMAND")
	}

	if surplus.Item.DaysOfStock >= s.cfg.OverstockDays {
		score += scoreSurplus
		reasons = append(reasons, "SURPLUS")
	}

	opp := domain.Opportunity{
		ProductID:      needy.Item.ProductID,
		FromOutlet:     surplus.Outlet,
		ToOutlet:       needy.Outlet,
		RecommendedQty: recommendedQty,
		TransferValue:  transferValue,
		UrgencyScore:   score,
		Reason:         strings.Join(reasons, ","),
		FromDays:       surplus.Item.DaysOfStock,
		ToDays:         needy.Item.DaysOfStock,
	}

	ok := recommendedQty > 0 && transferValue >= s.cfg.MinTransferValue
	return opp, ok
}
