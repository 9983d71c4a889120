package logic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when no profile exists for a wallet.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileLogic is the wallet profile business logic.
type ProfileLogic struct {
	db *gorm.DB
}

// NewProfileLogic creates the profile logic.
func NewProfileLogic(db *gorm.DB) *ProfileLogic {
	return &ProfileLogic{db: db}
}

// GetByWallet fetches the profile for a wallet address.
func (p *ProfileLogic) GetByWallet(walletAddress string) (*model.ProfileModel, error) {
	var profile model.ProfileModel
	err := p.db.First(&profile, "wallet_address = ?", strings.ToLower(walletAddress)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// EnsureForWallet returns the profile for a wallet, creating one with the
// given organizer id and a shortened-address display name if absent.
func (p *ProfileLogic) EnsureForWallet(walletAddress, organizerId string) (*model.ProfileModel, error) {
	address := strings.ToLower(walletAddress)

	profile, err := p.GetByWallet(address)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	created := model.ProfileModel{
		WalletAddress: address,
		OrganizerId:   organizerId,
		DisplayName:   shortenAddress(address),
	}
	if err := p.db.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &created, nil
}

// Update applies display name and avatar changes for a wallet's profile.
func (p *ProfileLogic) Update(walletAddress string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return errors.New("no fields to update")
	}

	result := p.db.Model(&model.ProfileModel{}).
		Where("wallet_address = ?", strings.ToLower(walletAddress)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func shortenAddress(address string) string {
	trimmed := strings.TrimPrefix(address, "0x")
	if len(trimmed) <= 10 {
		return trimmed
	}
	return trimmed[:6] + "..." + trimmed[len(trimmed)-4:]
}
