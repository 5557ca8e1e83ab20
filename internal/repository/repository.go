// Package repository persists scan snapshots. Core models stay free of ORM
// tags; this package owns the row shapes that actually hit the database.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"arbscan/internal/models"
)

// ScanRecord is one completed scan with its full opportunity list serialized
// as JSONB.
type ScanRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	DurationMS       int64   `json:"duration_ms"`
	OpportunityCount int     `json:"opportunity_count"`
	BestScore        float64 `json:"best_score"`
	BestStrategy     string  `gorm:"size:32" json:"best_strategy"`

	MinReturnPct float64 `json:"min_return_pct"`
	MaxRiskScore float64 `json:"max_risk_score"`
	CapitalUSD   float64 `json:"capital_usd"`

	Opportunities datatypes.JSON `gorm:"type:jsonb" json:"opportunities"`
}

type ListScansParams struct {
	Limit  int
	Offset int
	Since  *time.Time
}

type Repository interface {
	InsertScan(ctx context.Context, item *ScanRecord) error
	GetScan(ctx context.Context, id string) (*ScanRecord, error)
	ListScans(ctx context.Context, params ListScansParams) ([]ScanRecord, error)
	CountScans(ctx context.Context, params ListScansParams) (int64, error)
	DeleteScansBefore(ctx context.Context, before time.Time) (int64, error)
}

// NewScanRecord snapshots a finished scan. Marshal failures degrade to an
// empty opportunity list rather than losing the row.
func NewScanRecord(opps []models.Opportunity, minReturnPct, maxRiskScore, capitalUSD float64, took time.Duration) *ScanRecord {
	rec := &ScanRecord{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		DurationMS:       took.Milliseconds(),
		OpportunityCount: len(opps),
		MinReturnPct:     minReturnPct,
		MaxRiskScore:     maxRiskScore,
		CapitalUSD:       capitalUSD,
	}
	if len(opps) > 0 {
		rec.BestScore = opps[0].OpportunityScore
		rec.BestStrategy = string(opps[0].Strategy)
	}
	if raw, err := json.Marshal(opps); err == nil {
		rec.Opportunities = datatypes.JSON(raw)
	} else {
		rec.Opportunities = datatypes.JSON([]byte("[]"))
	}
	return rec
}
