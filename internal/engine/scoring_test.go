package engine

import (
	"math"
	"testing"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
)

func status(outletID int64, item domain.InventoryItem) *domain.OutletStatus {
	return &domain.OutletStatus{
		Outlet: &domain.Outlet{ID: outletID, Name: "outlet"},
		Item:   &item,
	}
}

func TestScore_CriticalLowStock(t *testing.T) {
	cfg := config.DefaultRebalanceConfig()
	scorer := NewScorer(cfg)

	// Needy outlet is fully stocked out with real demand; source has
	// deep surplus.
	needy := status(1, domain.InventoryItem{
		ProductID:      "SKU-1",
		InventoryLevel: 0,
		DailyVelocity:  5,
		DaysOfStock:    0,
	})
	surplus := status(2, domain.InventoryItem{
		ProductID:      "SKU-1",
		InventoryLevel: 200,
		DailyVelocity:  2,
		DaysOfStock:    100,
	})

	opp, ok := scorer.Score(needy, surplus, 10)
	if !ok {
		t.Fatal("expected a valid opportunity")
	}

	// neededQty = 7*5 - 0 = 35; canSpare = 200 - 14*2 = 172
	if opp.RecommendedQty != 35 {
		t.Errorf("RecommendedQty = %d, want 35", opp.RecommendedQty)
	}
	if math.Abs(opp.TransferValue-350) > 1e-9 {
		t.Errorf("TransferValue = %v, want 350", opp.TransferValue)
	}
	if opp.UrgencyScore < 100 {
		t.Errorf("UrgencyScore = %d, want >= 100 (critical)", opp.UrgencyScore)
	}
	// 100 critical + 20 surplus (100 days >= 60)
	if opp.UrgencyScore != 120 {
		t.Errorf("UrgencyScore = %d, want 120", opp.UrgencyScore)
	}
	if opp.Reason != "CRITICAL,SURPLUS" {
		t.Errorf("Reason = %q, want %q", opp.Reason, "CRITICAL,SURPLUS")
	}
	if opp.FromOutlet.ID == opp.ToOutlet.ID {
		t.Error("from and to outlets must differ")
	}
}

func TestScore_BelowValueFloorIsRejected(t *testing.T) {
	cfg := config.DefaultRebalanceConfig()
	cfg.MinTransferValue = 5
	scorer := NewScorer(cfg)

	// neededQty = 7*1 - 6 = 1; one unit at 0.50 is under the floor
	needy := status(1, domain.InventoryItem{
		ProductID:      "SKU-2",
		InventoryLevel: 6,
		DailyVelocity:  1,
		DaysOfStock:    6,
	})
	surplus := status(2, domain.InventoryItem{
		ProductID:      "SKU-2",
		InventoryLevel: 100,
		DailyVelocity:  0,
		DaysOfStock:    1000,
	})

	opp, ok := scorer.Score(needy, surplus, 0.50)
	if ok {
		t.Fatalf("expected rejection, got opportunity worth %v", opp.TransferValue)
	}
	if opp.RecommendedQty != 1 {
		t.Errorf("RecommendedQty = %d, want 1", opp.RecommendedQty)
	}
}

func TestScore_ZeroQuantityIsRejected(t *testing.T) {
	cfg := config.DefaultRebalanceConfig()
	scorer := NewScorer(cfg)

	// Needy outlet already holds its target cover
	needy := status(1, domain.InventoryItem{
		InventoryLevel: 100,
		DailyVelocity:  2,
		DaysOfStock:    50,
	})
	surplus := status(2, domain.InventoryItem{
		InventoryLevel: 500,
		DailyVelocity:  2,
		DaysOfStock:    250,
	})

	if _, ok := scorer.Score(needy, surplus, 10); ok {
		t.Error("expected rejection when nothing is needed")
	}
}

func TestScore_QuantityBounds(t *testing.T) {
	cfg := config.DefaultRebalanceConfig()
	cfg.MinTransferValue = 0
	scorer := NewScorer(cfg)

	cases := []struct {
		name           string
		needyLevel     int
		needyVelocity  float64
		surplusLevel   int
		surplusVel     float64
		wantQty        int
	}{
		{"need limited", 0, 2, 500, 1, 14},     // needed 14, spare 486
		{"spare limited", 0, 50, 40, 1, 26},    // needed 350, spare 26
		{"floored velocity buffer", 0, 1, 10, 0, 7}, // spare = 10 - 14*0.1 = 8.6, needed 7
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			needy := status(1, domain.InventoryItem{
				InventoryLevel: tc.needyLevel,
				DailyVelocity:  tc.needyVelocity,
			})
			surplus := status(2, domain.InventoryItem{
				InventoryLevel: tc.surplusLevel,
				DailyVelocity:  tc.surplusVel,
				DaysOfStock:    float64(tc.surplusLevel),
			})

			opp, ok := scorer.Score(needy, surplus, 1)
			if !ok {
				t.Fatal("expected a valid opportunity")
			}
			if opp.RecommendedQty != tc.wantQty {
				t.Errorf("RecommendedQty = %d, want %d", opp.RecommendedQty, tc.wantQty)
			}

			needed := cfg.TargetDaysMin*tc.needyVelocity - float64(tc.needyLevel)
			spare := float64(tc.surplusLevel) - cfg.SourceKeepDays*math.Max(tc.surplusVel, MinVelocityFloor)
			if float64(opp.RecommendedQty) > needed || float64(opp.RecommendedQty) > spare {
				t.Errorf("RecommendedQty %d exceeds bounds (needed %v, spare %v)", opp.RecommendedQty, needed, spare)
			}
		})
	}
}

func TestScore_AdditiveUrgencyAndReasons(t *testing.T) {
	cfg := config.DefaultRebalanceConfig()
	cfg.MinTransferValue = 0
	scorer := NewScorer(cfg)

	cases := []struct {
		name        string
		needy       domain.InventoryItem
		surplusDays float64
		wantScore   int
		wantReason  string
	}{
		{
			name:        "low only",
			needy:       domain.InventoryItem{InventoryLevel: 6, DailyVelocity: 2, DaysOfStock: 3},
			surplusDays: 30,
			wantScore:   50,
			wantReason:  "LOW",
		},
		{
			name:        "low plus demand",
			needy:       domain.InventoryItem{InventoryLevel: 6, DailyVelocity: 2, DaysOfStock: 3, IsHighDemand: true},
			surplusDays: 30,
			wantScore:   80,
			wantReason:  "LOW,DEMAND",
		},
		{
			name:        "critical plus demand plus surplus",
			needy:       domain.InventoryItem{InventoryLevel: 1, DailyVelocity: 4, DaysOfStock: 0.25, IsHighDemand: true},
			surplusDays: 90,
			wantScore:   150,
			wantReason:  "CRITICAL,DEMAND,SURPLUS",
		},
		{
			name:        "demand only",
			needy:       domain.InventoryItem{InventoryLevel: 20, DailyVelocity: 4, DaysOfStock: 8, IsHighDemand: true},
			surplusDays: 30,
			wantScore:   30,
			wantReason:  "DEMAND",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			needy := status(1, tc.needy)
			surplus := status(2, domain.InventoryItem{
				InventoryLevel: 1000,
				DailyVelocity:  1,
				DaysOfStock:    tc.surplusDays,
			})

			opp, ok := scorer.Score(needy, surplus, 10)
			if !ok {
				t.Fatal("expected a valid opportunity")
			}
			if opp.UrgencyScore != tc.wantScore {
				t.Errorf("UrgencyScore = %d, want %d", opp.UrgencyScore, tc.wantScore)
			}
			if opp.Reason != tc.wantReason {
				t.Errorf("Reason = %q, want %q", opp.Reason, tc.wantReason)
			}
		})
	}
}
