package model

import (
	"time"
)

// ContributionModel is one confirmed payment toward an event. Rows are
// insert-only; duplicate suppression is a recency-windowed lookup rather
// than a database constraint.
type ContributionModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId          string `json:"event_id" gorm:"not null;index"`
	AmountCents      int64  `json:"amount_cents" gorm:"not null"`
	ContributorEmail string `json:"contributor_email" gorm:"not null;index"`
	ContributorName  string `json:"contributor_name"`

	// Set after the thank-you tribute is generated
	TributeId string `json:"tribute_id"`
}

// TableName sets the table name.
func (ContributionModel) TableName() string {
	return "contributions"
}
