package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/lifeevents/les/internal/config"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
)

// LedgerAuditJob periodically re-derives every event's raised amount
// from its contribution rows. The cache should never drift, but the
// webhook path's increment fallback can leave it wrong; this job puts a
// bound on how long that lasts.
type LedgerAuditJob struct {
	db     *gorm.DB
	config *config.Config
	ledger *logic.LedgerLogic
}

// NewLedgerAuditJob creates the ledger audit job.
func NewLedgerAuditJob(db *gorm.DB, cfg *config.Config) *LedgerAuditJob {
	return &LedgerAuditJob{
		db:     db,
		config: cfg,
		ledger: logic.NewLedgerLogic(db),
	}
}

// GetName returns the job name.
func (j *LedgerAuditJob) GetName() string {
	return "ledger_audit"
}

// GetSchedule returns the job schedule.
func (j *LedgerAuditJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.AuditInterval) * time.Second)
}

// Execute recomputes raised amounts for all events and logs corrections.
func (j *LedgerAuditJob) Execute() {
	var events []model.EventModel
	if err := j.db.Select("id", "raised_cents").Find(&events).Error; err != nil {
		logger.Error("Ledger audit failed to list events: %v", err)
		return
	}

	corrected := 0
	for _, event := range events {
		total, err := j.ledger.RecomputeRaised(event.Id)
		if err != nil {
			logger.Error("Ledger audit failed for event %s: %v", event.Id, err)
			continue
		}
		if total != event.RaisedCents {
			logger.Warn("Ledger audit corrected event %s raised amount: %d -> %d",
				event.Id, event.RaisedCents, total)
			corrected++
		}
	}

	if corrected > 0 {
		logger.Info("Ledger audit completed, corrected %d of %d events", corrected, len(events))
	} else {
		logger.Debug("Ledger audit completed, %d events consistent", len(events))
	}
}
