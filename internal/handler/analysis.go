package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"arbscan/internal/ranker"
)

// AnalysisHandler exposes the per-strategy drill-down endpoints.
type AnalysisHandler struct {
	Svc *ranker.Service
}

func (h *AnalysisHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/triangle/paths", h.trianglePaths)
	r.GET("/api/v1/pairs/analyze", h.analyzePair)
	r.GET("/api/v1/strategies/compare", h.compareStrategies)
}

// @Summary Enumerate profitable conversion cycles
// @Tags analysis
// @Param start query string false "Start currency"
// @Param min_roi query number false "Minimum ROI pct"
// @Param max_steps query int false "Maximum hops"
// @Param amount query number false "Starting amount USD"
// @Success 200 {object} apiResponse
// @Router /api/v1/triangle/paths [get]
func (h *AnalysisHandler) trianglePaths(c *gin.Context) {
	start := strQuery(c, "start", "")
	minROI := floatQuery(c, "min_roi", 0.5)
	maxSteps := intQuery(c, "max_steps", 0)
	amount := floatQuery(c, "amount", 0)

	paths := h.Svc.FindPaths(c.Request.Context(), start, minROI, maxSteps, amount)
	Ok(c, paths, map[string]any{"count": len(paths)})
}

// @Summary Analyze one pair for mean reversion
// @Tags analysis
// @Param symbol_1 query string true "First symbol"
// @Param symbol_2 query string true "Second symbol"
// @Param lookback_days query int false "History window in days"
// @Success 200 {object} apiResponse
// @Router /api/v1/pairs/analyze [get]
func (h *AnalysisHandler) analyzePair(c *gin.Context) {
	sym1 := strings.ToUpper(strQuery(c, "symbol_1", ""))
	sym2 := strings.ToUpper(strQuery(c, "symbol_2", ""))
	if sym1 == "" || sym2 == "" {
		Error(c, http.StatusBadRequest, "symbol_1 and symbol_2 are required", nil)
		return
	}
	lookback := intQuery(c, "lookback_days", 0)

	sig := h.Svc.AnalyzePair(c.Request.Context(), sym1, sym2, lookback)
	if sig == nil {
		Ok(c, nil, map[string]any{"found": false, "reason": "insufficient history"})
		return
	}
	Ok(c, sig, map[string]any{"found": true})
}

// @Summary Compare aggregate stats per strategy
// @Tags analysis
// @Param capital query number false "Available capital USD"
// @Success 200 {object} apiResponse
// @Router /api/v1/strategies/compare [get]
func (h *AnalysisHandler) compareStrategies(c *gin.Context) {
	capital := floatQuery(c, "capital", 0)
	stats := h.Svc.CompareStrategies(c.Request.Context(), capital)
	Ok(c, stats, map[string]any{"strategies": len(stats)})
}
