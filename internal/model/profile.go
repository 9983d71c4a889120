package model

import (
	"time"
)

// ProfileModel links a wallet address to an organizer identity.
type ProfileModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WalletAddress string `json:"wallet_address" gorm:"uniqueIndex;not null"` // stored lowercased
	OrganizerId   string `json:"organizer_id" gorm:"not null;index"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url"`
}

// TableName sets the table name.
func (ProfileModel) TableName() string {
	return "profiles"
}
