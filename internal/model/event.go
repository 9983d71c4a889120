package model

import (
	"time"
)

// EventModel is a celebration fundraising event.
type EventModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Basic info
	Title       string    `json:"title" gorm:"not null" binding:"required"`
	Description string    `json:"description" gorm:"type:text"`
	EventType   EventType `json:"event_type" gorm:"not null"`
	ImageURL    string    `json:"image_url"`

	// Funding, in minor currency units (kobo). RaisedCents is a cache of
	// the contribution sum and is only ever written by recomputation.
	TargetCents int64 `json:"target_cents" gorm:"not null" binding:"required,min=0"`
	RaisedCents int64 `json:"raised_cents" gorm:"default:0"`

	// Visibility and ownership
	IsPrivate     bool   `json:"is_private" gorm:"default:false"`
	OrganizerId   string `json:"organizer_id" gorm:"not null;index"`
	WalletAddress string `json:"wallet_address"`
}

// EventType enumerates the supported celebration kinds.
type EventType string

const (
	EventTypeWedding      EventType = "Wedding"
	EventTypeFuneral      EventType = "Funeral"
	EventTypeNaming       EventType = "Naming"
	EventTypeThanksgiving EventType = "Thanksgiving"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeWedding, EventTypeFuneral, EventTypeNaming, EventTypeThanksgiving:
		return true
	}
	return false
}

// TableName sets the table name.
func (EventModel) TableName() string {
	return "events"
}
