package logic

import (
	"errors"
	"fmt"

	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReconciliationLogic keeps durable markers for provider-confirmed
// charges so a confirmed payment is never silently lost when the local
// ledger write fails. Pending markers are retried by a background job.
type ReconciliationLogic struct {
	db     *gorm.DB
	ledger *LedgerLogic
}

// NewReconciliationLogic creates the reconciliation logic.
func NewReconciliationLogic(db *gorm.DB, ledger *LedgerLogic) *ReconciliationLogic {
	return &ReconciliationLogic{db: db, ledger: ledger}
}

// RecordConfirmed persists a marker for a confirmed charge. Repeat calls
// for the same reference are no-ops.
func (r *ReconciliationLogic) RecordConfirmed(reference, source string, payment ConfirmedPayment) error {
	if reference == "" {
		return errors.New("reference is required")
	}

	record := model.ReconciliationModel{
		Reference:        reference,
		Source:           source,
		EventId:          payment.EventId,
		AmountCents:      payment.AmountCents,
		ContributorEmail: payment.ContributorEmail,
		ContributorName:  payment.ContributorName,
		Status:           model.ReconciliationPending,
	}

	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("record reconciliation marker: %w", err)
	}

	return nil
}

// MarkApplied marks a reference as applied to the ledger.
func (r *ReconciliationLogic) MarkApplied(reference string) error {
	return r.db.Model(&model.ReconciliationModel{}).
		Where("reference = ?", reference).
		Update("status", model.ReconciliationApplied).Error
}

// RetryPending re-applies pending markers through the ledger's idempotent
// paths. Each marker goes through the same path that originally confirmed
// the charge, so the duplicate key stays the one that path would have
// used: webhook markers match on (event, email, amount), verify markers
// on (event, email). Markers for events that no longer resolve are marked
// failed; transient errors bump the attempt counter and stay pending.
func (r *ReconciliationLogic) RetryPending(limit int) (int, error) {
	var pending []model.ReconciliationModel
	query := r.db.Where("status = ?", model.ReconciliationPending).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("list pending reconciliations: %w", err)
	}

	applied := 0
	for _, record := range pending {
		payment := ConfirmedPayment{
			EventId:          record.EventId,
			AmountCents:      record.AmountCents,
			ContributorEmail: record.ContributorEmail,
			ContributorName:  record.ContributorName,
		}

		var duplicate bool
		var err error
		if record.Source == model.ReconciliationSourceWebhook {
			_, duplicate, err = r.ledger.RecordFromWebhook(payment)
		} else {
			_, duplicate, err = r.ledger.RecordFromVerification(payment)
		}
		if err != nil {
			if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrInvalidPayment) {
				// Terminal: retrying cannot succeed
				r.markFailed(record.Reference, err)
				continue
			}
			logger.Warn("Reconciliation retry failed for reference %s: %v", record.Reference, err)
			r.bumpAttempt(record.Reference, err)
			continue
		}

		if duplicate {
			logger.Info("Reconciliation %s already applied by another path", record.Reference)
		}

		if err := r.MarkApplied(record.Reference); err != nil {
			logger.Error("Failed to mark reconciliation %s applied: %v", record.Reference, err)
			continue
		}
		applied++
	}

	return applied, nil
}

func (r *ReconciliationLogic) markFailed(reference string, cause error) {
	err := r.db.Model(&model.ReconciliationModel{}).
		Where("reference = ?", reference).
		Updates(map[string]interface{}{
			"status":     model.ReconciliationFailed,
			"last_error": cause.Error(),
		}).Error
	if err != nil {
		logger.Error("Failed to mark reconciliation %s failed: %v", reference, err)
	}
}

func (r *ReconciliationLogic) bumpAttempt(reference string, cause error) {
	err := r.db.Model(&model.ReconciliationModel{}).
		Where("reference = ?", reference).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause.Error(),
		}).Error
	if err != nil {
		logger.Error("Failed to update reconciliation %s attempts: %v", reference, err)
	}
}
