package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arbscan/internal/models"
	"arbscan/internal/ranker"
	"arbscan/internal/risk"
)

// PortfolioHandler exposes the naive allocator and the portfolio risk checks.
type PortfolioHandler struct {
	Svc  *ranker.Service
	Risk *risk.Manager
}

func (h *PortfolioHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/portfolio/optimize", h.optimize)
	r.POST("/api/v1/risk/assess", h.assess)
}

type optimizeRequest struct {
	CapitalUSD   float64 `json:"capital_usd"`
	MaxPositions int     `json:"max_positions"`
	MinReturnPct float64 `json:"min_return_pct"`
}

// @Summary Optimize capital allocation over a fresh scan
// @Tags portfolio
// @Accept json
// @Param request body optimizeRequest true "Allocation parameters"
// @Success 200 {object} apiResponse
// @Router /api/v1/portfolio/optimize [post]
func (h *PortfolioHandler) optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	alloc := h.Svc.OptimizePortfolio(c.Request.Context(), req.CapitalUSD, req.MaxPositions, req.MinReturnPct)
	Ok(c, alloc, map[string]any{"positions": len(alloc.Allocations)})
}

type assessRequest struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	// Allocations maps opportunity id to allocated capital in USD.
	Allocations map[string]float64 `json:"allocations"`
}

type assessResponse struct {
	Metrics models.PortfolioRiskMetrics `json:"metrics"`
	Report  models.RiskReport           `json:"report"`
}

// @Summary Assess portfolio risk for a given allocation
// @Tags portfolio
// @Accept json
// @Param request body assessRequest true "Opportunities and allocations"
// @Success 200 {object} apiResponse
// @Router /api/v1/risk/assess [post]
func (h *PortfolioHandler) assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(req.Opportunities) == 0 || len(req.Allocations) == 0 {
		Error(c, http.StatusBadRequest, "opportunities and allocations are required", nil)
		return
	}
	metrics := h.Risk.AssessPortfolio(req.Opportunities, req.Allocations)
	weights := risk.StrategyWeights(req.Opportunities, req.Allocations)
	report := h.Risk.CheckLimits(metrics, weights)
	Ok(c, assessResponse{Metrics: metrics, Report: report}, nil)
}
