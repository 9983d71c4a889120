package logic

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRecordFromWebhook(t *testing.T) {
	t.Run("records contribution and recomputes raised amount", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		contribution, duplicate, err := ledger.RecordFromWebhook(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "ngozi@example.com",
			ContributorName:  "Ngozi Okafor",
		})
		if err != nil {
			t.Fatalf("RecordFromWebhook failed: %v", err)
		}
		if duplicate {
			t.Fatal("first delivery reported as duplicate")
		}
		if contribution.Id == "" {
			t.Fatal("contribution id not set")
		}

		if got := raisedCents(t, db, event.Id); got != 25_000 {
			t.Errorf("raised = %d, want 25000", got)
		}
	})

	t.Run("duplicate delivery leaves ledger unchanged", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		payment := ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      30_000,
			ContributorEmail: "tunde@example.com",
		}

		if _, _, err := ledger.RecordFromWebhook(payment); err != nil {
			t.Fatalf("first delivery failed: %v", err)
		}

		_, duplicate, err := ledger.RecordFromWebhook(payment)
		if err != nil {
			t.Fatalf("redelivery failed: %v", err)
		}
		if !duplicate {
			t.Fatal("redelivery not detected as duplicate")
		}

		if got := contributionCount(t, db, event.Id); got != 1 {
			t.Errorf("contribution count = %d, want 1", got)
		}
		if got := raisedCents(t, db, event.Id); got != 30_000 {
			t.Errorf("raised = %d, want 30000", got)
		}
	})

	t.Run("same contributor with different amount is a new contribution", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		first := ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "amara@example.com",
		}
		second := first
		second.AmountCents = 30_000

		if _, _, err := ledger.RecordFromWebhook(first); err != nil {
			t.Fatalf("first payment failed: %v", err)
		}
		_, duplicate, err := ledger.RecordFromWebhook(second)
		if err != nil {
			t.Fatalf("second payment failed: %v", err)
		}
		if duplicate {
			t.Fatal("distinct amount treated as duplicate")
		}

		if got := raisedCents(t, db, event.Id); got != 55_000 {
			t.Errorf("raised = %d, want 55000", got)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewLedgerLogic(db)

		_, _, err := ledger.RecordFromWebhook(ConfirmedPayment{
			EventId:          uuid.NewString(),
			AmountCents:      10_000,
			ContributorEmail: "ghost@example.com",
		})
		if !errors.Is(err, ErrEventNotFound) {
			t.Errorf("err = %v, want ErrEventNotFound", err)
		}
	})

	t.Run("invalid payments are rejected before any write", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		cases := []ConfirmedPayment{
			{EventId: "", AmountCents: 10_000, ContributorEmail: "a@example.com"},
			{EventId: event.Id, AmountCents: 0, ContributorEmail: "a@example.com"},
			{EventId: event.Id, AmountCents: -500, ContributorEmail: "a@example.com"},
			{EventId: event.Id, AmountCents: 10_000, ContributorEmail: ""},
		}
		for _, payment := range cases {
			if _, _, err := ledger.RecordFromWebhook(payment); !errors.Is(err, ErrInvalidPayment) {
				t.Errorf("payment %+v: err = %v, want ErrInvalidPayment", payment, err)
			}
		}

		if got := contributionCount(t, db, event.Id); got != 0 {
			t.Errorf("contribution count = %d, want 0", got)
		}
	})
}

func TestRecordFromVerification(t *testing.T) {
	t.Run("records when webhook never arrived", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		_, duplicate, err := ledger.RecordFromVerification(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      40_000,
			ContributorEmail: "bola@example.com",
		})
		if err != nil {
			t.Fatalf("RecordFromVerification failed: %v", err)
		}
		if duplicate {
			t.Fatal("first verification reported as duplicate")
		}

		if got := raisedCents(t, db, event.Id); got != 40_000 {
			t.Errorf("raised = %d, want 40000", got)
		}
	})

	t.Run("after webhook already recorded, no second row", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		payment := ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      20_000,
			ContributorEmail: "kemi@example.com",
		}

		if _, _, err := ledger.RecordFromWebhook(payment); err != nil {
			t.Fatalf("webhook record failed: %v", err)
		}

		_, duplicate, err := ledger.RecordFromVerification(payment)
		if err != nil {
			t.Fatalf("verification after webhook failed: %v", err)
		}
		if !duplicate {
			t.Fatal("existing contribution not detected")
		}

		if got := contributionCount(t, db, event.Id); got != 1 {
			t.Errorf("contribution count = %d, want 1", got)
		}
		if got := raisedCents(t, db, event.Id); got != 20_000 {
			t.Errorf("raised = %d, want 20000", got)
		}
	})

	t.Run("matches on email alone even when amounts differ", func(t *testing.T) {
		// Weaker key than the webhook path: a verification for the same
		// contributor is treated as already recorded regardless of amount.
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		if _, _, err := ledger.RecordFromWebhook(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      25_000,
			ContributorEmail: "sade@example.com",
		}); err != nil {
			t.Fatalf("webhook record failed: %v", err)
		}

		_, duplicate, err := ledger.RecordFromVerification(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      99_000,
			ContributorEmail: "sade@example.com",
		})
		if err != nil {
			t.Fatalf("verification failed: %v", err)
		}
		if !duplicate {
			t.Fatal("same-email verification not treated as duplicate")
		}
		if got := contributionCount(t, db, event.Id); got != 1 {
			t.Errorf("contribution count = %d, want 1", got)
		}
	})
}

func TestRecomputeRaised(t *testing.T) {
	t.Run("raised equals the sum over all contributions", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		amounts := []int64{25_000, 30_000, 100_000, 1}
		for i, amount := range amounts {
			if _, err := ledger.insertContribution(ConfirmedPayment{
				EventId:          event.Id,
				AmountCents:      amount,
				ContributorEmail: uuid.NewString() + "@example.com",
			}); err != nil {
				t.Fatalf("insert %d failed: %v", i, err)
			}
		}

		total, err := ledger.RecomputeRaised(event.Id)
		if err != nil {
			t.Fatalf("RecomputeRaised failed: %v", err)
		}
		if total != 155_001 {
			t.Errorf("total = %d, want 155001", total)
		}
		if got := raisedCents(t, db, event.Id); got != 155_001 {
			t.Errorf("raised = %d, want 155001", got)
		}
	})

	t.Run("overwrites a drifted cache", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		if _, err := ledger.insertContribution(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      10_000,
			ContributorEmail: "drift@example.com",
		}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		// Simulate double-count drift left by the increment fallback
		if err := db.Model(event).Update("raised_cents", 20_000).Error; err != nil {
			t.Fatalf("seed drift failed: %v", err)
		}

		if _, err := ledger.RecomputeRaised(event.Id); err != nil {
			t.Fatalf("RecomputeRaised failed: %v", err)
		}
		if got := raisedCents(t, db, event.Id); got != 10_000 {
			t.Errorf("raised = %d, want 10000", got)
		}
	})

	t.Run("no contributions resets to zero", func(t *testing.T) {
		db := setupTestDB(t)
		event := createTestEvent(t, db)
		ledger := NewLedgerLogic(db)

		if err := db.Model(event).Update("raised_cents", 5_000).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		total, err := ledger.RecomputeRaised(event.Id)
		if err != nil {
			t.Fatalf("RecomputeRaised failed: %v", err)
		}
		if total != 0 {
			t.Errorf("total = %d, want 0", total)
		}
		if got := raisedCents(t, db, event.Id); got != 0 {
			t.Errorf("raised = %d, want 0", got)
		}
	})
}

func TestConcurrentDeliveryLimitation(t *testing.T) {
	// The duplicate lookup and insert are not atomic: two deliveries of
	// the same charge racing past the lookup both insert. That duplicate
	// row is an accepted limitation; what must hold is that the raised
	// cache still equals the sum over whatever rows exist.
	db := setupTestDB(t)
	event := createTestEvent(t, db)
	ledger := NewLedgerLogic(db)

	payment := ConfirmedPayment{
		EventId:          event.Id,
		AmountCents:      25_000,
		ContributorEmail: "race@example.com",
	}

	// Both racers passed the lookup before either inserted
	for i := 0; i < 2; i++ {
		if _, err := ledger.insertContribution(payment); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	if got := contributionCount(t, db, event.Id); got != 2 {
		t.Fatalf("contribution count = %d, want the duplicate row", got)
	}

	total, err := ledger.RecomputeRaised(event.Id)
	if err != nil {
		t.Fatalf("RecomputeRaised failed: %v", err)
	}
	if total != 50_000 {
		t.Errorf("total = %d, want 50000 (sum over both rows)", total)
	}
	if got := raisedCents(t, db, event.Id); got != 50_000 {
		t.Errorf("raised = %d, want 50000", got)
	}

	// A later delivery of the same charge is caught by the lookup
	_, duplicate, err := ledger.RecordFromWebhook(payment)
	if err != nil {
		t.Fatalf("RecordFromWebhook failed: %v", err)
	}
	if !duplicate {
		t.Error("post-race delivery not detected as duplicate")
	}
	if got := contributionCount(t, db, event.Id); got != 2 {
		t.Errorf("contribution count = %d, want 2", got)
	}
}

func TestListContributions(t *testing.T) {
	db := setupTestDB(t)
	event := createTestEvent(t, db)
	ledger := NewLedgerLogic(db)

	for i := 0; i < 5; i++ {
		if _, err := ledger.insertContribution(ConfirmedPayment{
			EventId:          event.Id,
			AmountCents:      int64(1_000 * (i + 1)),
			ContributorEmail: uuid.NewString() + "@example.com",
		}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	contributions, err := ledger.ListContributions(event.Id, 3)
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	if len(contributions) != 3 {
		t.Errorf("len = %d, want 3", len(contributions))
	}

	all, err := ledger.ListContributions(event.Id, 0)
	if err != nil {
		t.Fatalf("ListContributions failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len = %d, want 5", len(all))
	}
}

func TestContributionStats(t *testing.T) {
	db := setupTestDB(t)
	event := createTestEvent(t, db)
	ledger := NewLedgerLogic(db)

	payments := []ConfirmedPayment{
		{EventId: event.Id, AmountCents: 10_000, ContributorEmail: "a@example.com"},
		{EventId: event.Id, AmountCents: 20_000, ContributorEmail: "a@example.com"},
		{EventId: event.Id, AmountCents: 30_000, ContributorEmail: "b@example.com"},
	}
	for _, payment := range payments {
		if _, err := ledger.insertContribution(payment); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	contributors, contributions, err := ledger.ContributionStats(event.Id)
	if err != nil {
		t.Fatalf("ContributionStats failed: %v", err)
	}
	if contributors != 2 {
		t.Errorf("contributors = %d, want 2", contributors)
	}
	if contributions != 3 {
		t.Errorf("contributions = %d, want 3", contributions)
	}
}
