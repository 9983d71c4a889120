package handler

import (
	"time"

	"github.com/lifeevents/les/internal/model"
	"github.com/lifeevents/les/internal/paystack"
)

// Payment request/response models

// InitializePaymentRequest starts a checkout session. Amount is in minor
// currency units (kobo).
type InitializePaymentRequest struct {
	Amount   int64             `json:"amount" binding:"required"`
	Email    string            `json:"email" binding:"required"`
	Metadata paystack.Metadata `json:"metadata"`
}

// VerifyPaymentRequest re-checks a charge after the browser redirect.
type VerifyPaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
	EventId   string `json:"eventId"`
}

// VerifyPaymentResponse reports the outcome of the fallback verification.
type VerifyPaymentResponse struct {
	Success       bool                  `json:"success"`
	Verified      bool                  `json:"verified"`
	Status        string                `json:"status,omitempty"`
	EventId       string                `json:"eventId,omitempty"`
	AmountCents   int64                 `json:"amountCents,omitempty"`
	CustomerEmail string                `json:"customerEmail,omitempty"`
	Transaction   *paystack.Transaction `json:"transaction,omitempty"`
}

// Event request/response models

// CreateEventRequest creates a celebration event.
type CreateEventRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	EventType     string `json:"event_type" binding:"required"`
	TargetCents   int64  `json:"target_cents" binding:"required"`
	ImageURL      string `json:"image_url"`
	IsPrivate     bool   `json:"is_private"`
	OrganizerId   string `json:"organizer_id" binding:"required"`
	WalletAddress string `json:"wallet_address"`
}

// EventResponse is an event as rendered to the UI.
type EventResponse struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventType     string    `json:"eventType"`
	ImageURL      string    `json:"imageUrl"`
	TargetCents   int64     `json:"targetCents"`
	RaisedCents   int64     `json:"raisedCents"`
	IsPrivate     bool      `json:"isPrivate"`
	OrganizerId   string    `json:"organizerId"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ContributionResponse is a contribution as rendered to the UI.
type ContributionResponse struct {
	Id               string    `json:"id"`
	EventId          string    `json:"eventId"`
	AmountCents      int64     `json:"amountCents"`
	ContributorEmail string    `json:"contributorEmail"`
	ContributorName  string    `json:"contributorName"`
	TributeId        string    `json:"tributeId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TributeResponse is a generated tribute as rendered to the UI.
type TributeResponse struct {
	Id          string    `json:"id"`
	EventId     string    `json:"eventId"`
	MediaType   string    `json:"mediaType"`
	AssetURI    string    `json:"assetUri"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Wallet and profile models

// WalletSessionRequest opens a session for a connected wallet.
type WalletSessionRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// ProfileResponse is a wallet profile as rendered to the UI.
type ProfileResponse struct {
	WalletAddress string `json:"walletAddress"`
	OrganizerId   string `json:"organizerId"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl"`
}

// Converters

// ToEventResponse converts a database model to a response model.
func ToEventResponse(event *model.EventModel) EventResponse {
	return EventResponse{
		Id:            event.Id,
		Title:         event.Title,
		Description:   event.Description,
		EventType:     string(event.EventType),
		ImageURL:      event.ImageURL,
		TargetCents:   event.TargetCents,
		RaisedCents:   event.RaisedCents,
		IsPrivate:     event.IsPrivate,
		OrganizerId:   event.OrganizerId,
		WalletAddress: event.WalletAddress,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
	}
}

// ToEventResponseList converts a model list to response models.
func ToEventResponseList(events []model.EventModel) []EventResponse {
	result := make([]EventResponse, len(events))
	for i, event := range events {
		result[i] = ToEventResponse(&event)
	}
	return result
}

// ToContributionResponse converts a database model to a response model.
func ToContributionResponse(contribution *model.ContributionModel) ContributionResponse {
	return ContributionResponse{
		Id:               contribution.Id,
		EventId:          contribution.EventId,
		AmountCents:      contribution.AmountCents,
		ContributorEmail: contribution.ContributorEmail,
		ContributorName:  contribution.ContributorName,
		TributeId:        contribution.TributeId,
		CreatedAt:        contribution.CreatedAt,
	}
}

// ToContributionResponseList converts a model list to response models.
func ToContributionResponseList(contributions []model.ContributionModel) []ContributionResponse {
	result := make([]ContributionResponse, len(contributions))
	for i, contribution := range contributions {
		result[i] = ToContributionResponse(&contribution)
	}
	return result
}

// ToTributeResponseList converts a model list to response models.
func ToTributeResponseList(tributes []model.TributeModel) []TributeResponse {
	result := make([]TributeResponse, len(tributes))
	for i, tribute := range tributes {
		result[i] = TributeResponse{
			Id:          tribute.Id,
			EventId:     tribute.EventId,
			MediaType:   string(tribute.MediaType),
			AssetURI:    tribute.AssetURI,
			Description: tribute.Description,
			CreatedAt:   tribute.CreatedAt,
		}
	}
	return result
}

// ToProfileResponse converts a database model to a response model.
func ToProfileResponse(profile *model.ProfileModel) ProfileResponse {
	return ProfileResponse{
		WalletAddress: profile.WalletAddress,
		OrganizerId:   profile.OrganizerId,
		DisplayName:   profile.DisplayName,
		AvatarURL:     profile.AvatarURL,
	}
}
