// internal/service/insights.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/domain"
	"github.com/andresuchdata/rebalancer/internal/storage"
)

// velocityLeadersLimit caps the velocity leaderboard in a report.
const velocityLeadersLimit = 50

// InsightsService aggregates classification results into a
// business-intelligence snapshot for downstream consumers. Publishing
// is best effort; failures never abort a run.
type InsightsService struct {
	cfg   config.InsightsConfig
	store storage.ObjectStorage // nil when no bucket is configured
	now   func() time.Time
}

func NewInsightsService(cfg config.InsightsConfig, store storage.ObjectStorage) *InsightsService {
	return &InsightsService{cfg: cfg, store: store, now: time.Now}
}

// Generate collects all flagged items across outlets plus the top
// products by daily velocity. Pure aggregation over analyzed items.
func (s *InsightsService) Generate(outlets []domain.Outlet, inventories map[int64][]*domain.InventoryItem) *domain.InsightsReport {
	report := &domain.InsightsReport{GeneratedAt: s.now()}

	var all []domain.ProductSignal
	for i := range outlets {
		outlet := &outlets[i]
		for _, item := range inventories[outlet.ID] {
			signal := domain.ProductSignal{
				OutletID:       outlet.ID,
				OutletName:     outlet.Name,
				ProductID:      item.ProductID,
				InventoryLevel: item.InventoryLevel,
				DailyVelocity:  item.DailyVelocity,
				DaysOfStock:    item.DaysOfStock,
			}

			if item.IsHighDemand {
				report.HighDemand = append(report.HighDemand, signal)
			}
			if item.IsLow {
				report.LowStock = append(report.LowStock, signal)
			}
			if item.IsOverstock {
				report.Overstock = append(report.Overstock, signal)
			}

			all = append(all, signal)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].DailyVelocity > all[j].DailyVelocity
	})
	if len(all) > velocityLeadersLimit {
		all = all[:velocityLeadersLimit]
	}
	report.VelocityLeaders = all

	return report
}

// Publish writes the report as JSON to the configured directory and,
// when object storage is configured, uploads the same snapshot there.
func (s *InsightsService) Publish(ctx context.Context, report *domain.InsightsReport) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode insights report: %w", err)
	}

	name := fmt.Sprintf("insights_%s.json", report.GeneratedAt.Format("20060102_150405"))

	if err := os.MkdirAll(s.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create insights directory: %w", err)
	}
	path := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write insights snapshot %s: %w", path, err)
	}

	if s.store != nil {
		key := "insights/" + name
		if err := s.store.UploadObject(ctx, key, payload, "application/json"); err != nil {
			return fmt.Errorf("failed to upload insights snapshot: %w", err)
		}
	}

	return nil
}
