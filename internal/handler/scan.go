package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arbscan/internal/ranker"
	"arbscan/internal/repository"
)

// ScanHandler exposes the on-demand scan, the best-opportunity pick and the
// persisted scan history.
type ScanHandler struct {
	Svc    *ranker.Service
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *ScanHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/scan", h.scan)
	r.GET("/api/v1/opportunities/best", h.best)
	r.GET("/api/v1/scans", h.listScans)
	r.GET("/api/v1/scans/:id", h.getScan)
}

// @Summary Scan all strategies
// @Tags scan
// @Param min_return query number false "Minimum expected return pct"
// @Param max_risk query number false "Maximum risk score"
// @Param capital query number false "Available capital USD"
// @Success 200 {object} apiResponse
// @Router /api/v1/scan [get]
func (h *ScanHandler) scan(c *gin.Context) {
	filter := h.Svc.DefaultFilter()
	filter.MinReturnPct = floatQuery(c, "min_return", filter.MinReturnPct)
	filter.MaxRiskScore = floatQuery(c, "max_risk", filter.MaxRiskScore)
	filter.CapitalUSD = floatQuery(c, "capital", filter.CapitalUSD)

	started := time.Now()
	opps := h.Svc.Scan(c.Request.Context(), filter)
	took := time.Since(started)

	meta := map[string]any{
		"count":       len(opps),
		"duration_ms": took.Milliseconds(),
	}
	if h.Repo != nil {
		rec := repository.NewScanRecord(opps, filter.MinReturnPct, filter.MaxRiskScore, filter.CapitalUSD, took)
		if err := h.Repo.InsertScan(c.Request.Context(), rec); err != nil {
			if h.Logger != nil {
				h.Logger.Warn("scan snapshot insert failed", zap.Error(err))
			}
		} else {
			meta["scan_id"] = rec.ID
		}
	}
	Ok(c, opps, meta)
}

// @Summary Best opportunity under a ranking method
// @Tags scan
// @Param method query string false "return | risk_adjusted | score"
// @Param capital query number false "Available capital USD"
// @Success 200 {object} apiResponse
// @Router /api/v1/opportunities/best [get]
func (h *ScanHandler) best(c *gin.Context) {
	filter := h.Svc.DefaultFilter()
	filter.MinReturnPct = floatQuery(c, "min_return", filter.MinReturnPct)
	filter.MaxRiskScore = floatQuery(c, "max_risk", filter.MaxRiskScore)
	filter.CapitalUSD = floatQuery(c, "capital", filter.CapitalUSD)
	method := strQuery(c, "method", "score")

	best := h.Svc.Best(c.Request.Context(), method, filter)
	if best == nil {
		Ok(c, nil, map[string]any{"found": false})
		return
	}
	Ok(c, best, map[string]any{"found": true, "method": method})
}

// @Summary List persisted scans
// @Tags scan
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} apiResponse
// @Router /api/v1/scans [get]
func (h *ScanHandler) listScans(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "persistence disabled", nil)
		return
	}
	params := repository.ListScansParams{
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	items, err := h.Repo.ListScans(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountScans(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Get one persisted scan
// @Tags scan
// @Param id path string true "Scan id"
// @Success 200 {object} apiResponse
// @Router /api/v1/scans/{id} [get]
func (h *ScanHandler) getScan(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusServiceUnavailable, "persistence disabled", nil)
		return
	}
	item, err := h.Repo.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "scan not found", nil)
		return
	}
	Ok(c, item, nil)
}
