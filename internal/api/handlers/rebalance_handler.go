// internal/api/handlers/rebalance_handler.go
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/rebalancer/internal/cache"
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RebalanceHandler struct {
	rebalancer *service.Rebalancer
	summaries  cache.SummaryCache
	insights   config.InsightsConfig
}

func NewRebalanceHandler(rebalancer *service.Rebalancer, summaries cache.SummaryCache, insights config.InsightsConfig) *RebalanceHandler {
	return &RebalanceHandler{
		rebalancer: rebalancer,
		summaries:  summaries,
		insights:   insights,
	}
}

// Run triggers a rebalancing pass. Dry-run is the default; a live run
// requires an explicit dry_run=false.
func (h *RebalanceHandler) Run(c *gin.Context) {
	dryRun := true
	if raw := c.Query("dry_run"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run must be a boolean"})
			return
		}
		dryRun = parsed
	}

	summary, err := h.rebalancer.Run(c.Request.Context(), dryRun)
	if err != nil {
		if errors.Is(err, cache.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Bool("dry_run", dryRun).Msg("rebalance run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSummary returns the most recent run summary, when one is cached.
func (h *RebalanceHandler) GetSummary(c *gin.Context) {
	summary, ok, err := h.summaries.GetLatest(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to read cached run summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read run summary"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run summary available"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetInsights serves the newest insights snapshot from the configured
// directory.
func (h *RebalanceHandler) GetInsights(c *gin.Context) {
	if !h.insights.Enabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "insights are disabled"})
		return
	}

	path, err := latestSnapshot(h.insights.Dir)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no insights snapshot available"})
		return
	}

	c.Header("Content-Type", "application/json")
	c.File(path)
}

// latestSnapshot picks the newest insights file by name; snapshot
// names embed a sortable timestamp.
func latestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, "insights_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", os.ErrNotExist
	}

	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
