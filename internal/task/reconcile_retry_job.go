package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/lifeevents/les/internal/config"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/logic"
	"gorm.io/gorm"
)

const reconcileBatchSize = 100

// ReconcileRetryJob re-applies pending reconciliation markers so a
// provider-confirmed charge whose ledger write failed eventually lands.
type ReconcileRetryJob struct {
	config *config.Config
	recon  *logic.ReconciliationLogic
}

// NewReconcileRetryJob creates the reconciliation retry job.
func NewReconcileRetryJob(db *gorm.DB, cfg *config.Config) *ReconcileRetryJob {
	ledger := logic.NewLedgerLogic(db)
	return &ReconcileRetryJob{
		config: cfg,
		recon:  logic.NewReconciliationLogic(db, ledger),
	}
}

// GetName returns the job name.
func (j *ReconcileRetryJob) GetName() string {
	return "reconcile_retry"
}

// GetSchedule returns the job schedule.
func (j *ReconcileRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.ReconcileInterval) * time.Second)
}

// Execute runs one retry pass.
func (j *ReconcileRetryJob) Execute() {
	applied, err := j.recon.RetryPending(reconcileBatchSize)
	if err != nil {
		logger.Error("Reconciliation retry pass failed: %v", err)
		return
	}
	if applied > 0 {
		logger.Info("Reconciliation retry applied %d pending charges", applied)
	}
}
