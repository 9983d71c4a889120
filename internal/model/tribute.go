package model

import (
	"time"

	"gorm.io/datatypes"
)

// TributeModel is a generated thank-you artifact for a contribution.
// On-chain minting of tribute shares is not performed here.
type TributeModel struct {
	Id        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContributionId string           `json:"contribution_id" gorm:"not null;index"`
	EventId        string           `json:"event_id" gorm:"not null;index"`
	MediaType      TributeMediaType `json:"media_type" gorm:"not null"`
	AssetURI       string           `json:"asset_uri" gorm:"not null"`
	Description    string           `json:"description" gorm:"type:text"`
	Metadata       datatypes.JSON   `json:"metadata"`
}

// TributeMediaType is the kind of generated artifact.
type TributeMediaType string

const (
	TributeMediaImage TributeMediaType = "image"
	TributeMediaAudio TributeMediaType = "audio"
	TributeMediaVideo TributeMediaType = "video"
)

// TableName sets the table name.
func (TributeModel) TableName() string {
	return "tributes"
}
