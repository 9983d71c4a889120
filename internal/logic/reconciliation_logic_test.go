package logic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lifeevents/les/internal/model"
)

func TestRecordConfirmed(t *testing.T) {
	t.Run("writes a pending marker", func(t *testing.T) {
		db := setupTestDB(t)
		recon := NewReconciliationLogic(db, NewLedgerLogic(db))

		err := recon.RecordConfirmed("ref-001", model.ReconciliationSourceWebhook, ConfirmedPayment{
			EventId:          uuid.NewString(),
			AmountCents:      25_000,
			ContributorEmail: "yemi@example.com",
		})
		if err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		var record model.ReconciliationModel
		if err := db.First(&record, "reference = ?", "ref-001").Error; err != nil {
			t.Fatalf("marker not found: %v", err)
		}
		if record.Status != model.ReconciliationPending {
			t.Errorf("status = %s, want pending", record.Status)
		}
		if record.Source != model.ReconciliationSourceWebhook {
			t.Errorf("source = %s, want webhook", record.Source)
		}
	})

	t.Run("repeat references are a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		recon := NewReconciliationLogic(db, NewLedgerLogic(db))

		payment := ConfirmedPayment{
			EventId:          uuid.NewString(),
			AmountCents:      25_000,
			ContributorEmail: "yemi@example.com",
		}
		if err := recon.RecordConfirmed("ref-dup", model.ReconciliationSourceVerify, payment); err != nil {
			t.Fatalf("first RecordConfirmed failed: %v", err)
		}
		if err := recon.RecordConfirmed("ref-dup", model.ReconciliationSourceVerify, payment); err != nil {
			t.Fatalf("second RecordConfirmed failed: %v", err)
		}

		var count int64
		if err := db.Model(&model.ReconciliationModel{}).
			Where("reference = ?", "ref-dup").
			Count(&count).Error; err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("marker count = %d, want 1", count)
		}
	})

	t.Run("empty reference is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		recon := NewReconciliationLogic(db, NewLedgerLogic(db))

		if err := recon.RecordConfirmed("", model.ReconciliationSourceWebhook, ConfirmedPayment{}); err == nil {
			t.Fatal("expected error for empty reference")
		}
	})
}

func TestRetryPending(t *testing.T) {
	t.Run("applies pending markers to the ledger", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)
		recon := NewReconciliationLogic(db, ledger)

		if err := recon.RecordConfirmed("ref-retry", model.ReconciliationSourceWebhook, ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      45_000,
			ContributorEmail: "chioma@example.com",
			ContributorName:  "Chioma Eze",
		}); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		applied, err := recon.RetryPending(10)
		if err != nil {
			t.Fatalf("RetryPending failed: %v", err)
		}
		if applied != 1 {
			t.Errorf("applied = %d, want 1", applied)
		}

		if got := raisedCents(t, db, event.Id); got != 45_000 {
			t.Errorf("raised = %d, want 45000", got)
		}

		var record model.ReconciliationModel
		if err := db.First(&record, "reference = ?", "ref-retry").Error; err != nil {
			t.Fatalf("marker not found: %v", err)
		}
		if record.Status != model.ReconciliationApplied {
			t.Errorf("status = %s, want applied", record.Status)
		}
	})

	t.Run("already-recorded payment marks applied without a second row", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)
		recon := NewReconciliationLogic(db, ledger)

		payment := ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      15_000,
			ContributorEmail: "emeka@example.com",
		}
		if _, _, err := ledger.RecordFromWebhook(payment); err != nil {
			t.Fatalf("webhook record failed: %v", err)
		}
		if err := recon.RecordConfirmed("ref-late", model.ReconciliationSourceWebhook, payment); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		applied, err := recon.RetryPending(10)
		if err != nil {
			t.Fatalf("RetryPending failed: %v", err)
		}
		if applied != 1 {
			t.Errorf("applied = %d, want 1", applied)
		}

		if got := contributionCount(t, db, event.Id); got != 1 {
			t.Errorf("contribution count = %d, want 1", got)
		}
	})

	t.Run("webhook marker for a second distinct-amount charge is applied", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)
		recon := NewReconciliationLogic(db, ledger)

		// First charge landed normally
		if _, _, err := ledger.RecordFromWebhook(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "repeat@example.com",
		}); err != nil {
			t.Fatalf("first charge failed: %v", err)
		}

		// Second charge from the same contributor was provider-confirmed
		// but its ledger write failed, leaving only the marker
		if err := recon.RecordConfirmed("ref-second", model.ReconciliationSourceWebhook, ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      30_000,
			ContributorEmail: "repeat@example.com",
		}); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		applied, err := recon.RetryPending(10)
		if err != nil {
			t.Fatalf("RetryPending failed: %v", err)
		}
		if applied != 1 {
			t.Errorf("applied = %d, want 1", applied)
		}

		// The webhook duplicate key includes the amount, so the second
		// charge must land as its own row
		if got := contributionCount(t, db, event.Id); got != 2 {
			t.Errorf("contribution count = %d, want 2", got)
		}
		if got := raisedCents(t, db, event.Id); got != 55_000 {
			t.Errorf("raised = %d, want 55000", got)
		}

		var marker model.ReconciliationModel
		if err := db.First(&marker, "reference = ?", "ref-second").Error; err != nil {
			t.Fatalf("marker not found: %v", err)
		}
		if marker.Status != model.ReconciliationApplied {
			t.Errorf("status = %s, want applied", marker.Status)
		}
	})

	t.Run("verify marker keeps the email-only duplicate key", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)
		recon := NewReconciliationLogic(db, ledger)

		if _, _, err := ledger.RecordFromWebhook(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "redirect@example.com",
		}); err != nil {
			t.Fatalf("webhook record failed: %v", err)
		}

		if err := recon.RecordConfirmed("ref-verify", model.ReconciliationSourceVerify, ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "redirect@example.com",
		}); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		if _, err := recon.RetryPending(10); err != nil {
			t.Fatalf("RetryPending failed: %v", err)
		}

		if got := contributionCount(t, db, event.Id); got != 1 {
			t.Errorf("contribution count = %d, want 1", got)
		}
	})

	t.Run("marker for a missing event is marked failed", func(t *testing.T) {
		db := setupTestDB(t)
		recon := NewReconciliationLogic(db, NewLedgerLogic(db))

		if err := recon.RecordConfirmed("ref-gone", model.ReconciliationSourceVerify, ConfirmedPayment{
			EventId:          uuid.NewString(),
			AmountCents:      10_000,
			ContributorEmail: "lost@example.com",
		}); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		applied, err := recon.RetryPending(10)
		if err != nil {
			t.Fatalf("RetryPending failed: %v", err)
		}
		if applied != 0 {
			t.Errorf("applied = %d, want 0", applied)
		}

		var record model.ReconciliationModel
		if err := db.First(&record, "reference = ?", "ref-gone").Error; err != nil {
			t.Fatalf("marker not found: %v", err)
		}
		if record.Status != model.ReconciliationFailed {
			t.Errorf("status = %s, want failed", record.Status)
		}
		if record.LastError == "" {
			t.Error("last_error not recorded")
		}
	})

	t.Run("applied markers are not retried again", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)
		recon := NewReconciliationLogic(db, ledger)

		if err := recon.RecordConfirmed("ref-once", model.ReconciliationSourceWebhook, ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      5_000,
			ContributorEmail: "once@example.com",
		}); err != nil {
			t.Fatalf("RecordConfirmed failed: %v", err)
		}

		if _, err := recon.RetryPending(10); err != nil {
			t.Fatalf("first RetryPending failed: %v", err)
		}
		applied, err := recon.RetryPending(10)
		if err != nil {
			t.Fatalf("second RetryPending failed: %v", err)
		}
		if applied != 0 {
			t.Errorf("second pass applied = %d, want 0", applied)
		}
	})
}
