package model

import (
	"time"
)

// ReconciliationModel is a durable marker for a provider-confirmed charge.
// One is written as soon as the provider confirms a payment so the charge
// survives a failed ledger write; a background job retries pending rows.
type ReconciliationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference        string `json:"reference" gorm:"uniqueIndex;not null"` // provider transaction reference
	Source           string `json:"source" gorm:"not null"`                // webhook or verify
	EventId          string `json:"event_id" gorm:"not null;index"`
	AmountCents      int64  `json:"amount_cents" gorm:"not null"`
	ContributorEmail string `json:"contributor_email" gorm:"not null"`
	ContributorName  string `json:"contributor_name"`

	Status    ReconciliationStatus `json:"status" gorm:"default:'pending';index"`
	Attempts  int                  `json:"attempts" gorm:"default:0"`
	LastError string               `json:"last_error"`
}

// ReconciliationStatus is the processing state of a marker.
type ReconciliationStatus string

const (
	ReconciliationPending ReconciliationStatus = "pending"
	ReconciliationApplied ReconciliationStatus = "applied"
	ReconciliationFailed  ReconciliationStatus = "failed"
)

// Reconciliation sources.
const (
	ReconciliationSourceWebhook = "webhook"
	ReconciliationSourceVerify  = "verify"
)

// TableName sets the table name.
func (ReconciliationModel) TableName() string {
	return "reconciliations"
}
