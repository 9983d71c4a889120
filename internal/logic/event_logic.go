package logic

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lifeevents/les/internal/model"
	"gorm.io/gorm"
)

// EventLogic is the event business logic.
type EventLogic struct {
	db *gorm.DB
}

// NewEventLogic creates the event logic.
func NewEventLogic(db *gorm.DB) *EventLogic {
	return &EventLogic{db: db}
}

// CreateEvent validates and persists a new event.
func (e *EventLogic) CreateEvent(event *model.EventModel) error {
	if err := e.validateEvent(event); err != nil {
		return err
	}

	event.Id = uuid.NewString()
	event.RaisedCents = 0

	if err := e.db.Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

// GetPublicEvents lists public events, newest first.
func (e *EventLogic) GetPublicEvents(limit int) ([]model.EventModel, error) {
	var events []model.EventModel
	query := e.db.Where("is_private = ?", false).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	return events, nil
}

// GetEvent fetches one event by id. Private events resolve too; a direct
// link is the sharing mechanism for them.
func (e *EventLogic) GetEvent(id string) (*model.EventModel, error) {
	var event model.EventModel
	if err := e.db.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	return &event, nil
}

// UpdateEvent applies a restricted set of field updates.
func (e *EventLogic) UpdateEvent(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return errors.New("no fields to update")
	}

	result := e.db.Model(&model.EventModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// GetEventsByOrganizer lists an organizer's events, public and private.
func (e *EventLogic) GetEventsByOrganizer(organizerId string) ([]model.EventModel, error) {
	var events []model.EventModel
	if err := e.db.Where("organizer_id = ?", organizerId).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return events, nil
}

// GetEventStats returns progress statistics for one event.
func (e *EventLogic) GetEventStats(id string) (map[string]interface{}, error) {
	event, err := e.GetEvent(id)
	if err != nil {
		return nil, err
	}

	var contributorCount int64
	if err := e.db.Model(&model.ContributionModel{}).
		Where("event_id = ?", id).
		Distinct("contributor_email").
		Count(&contributorCount).Error; err != nil {
		return nil, fmt.Errorf("count contributors: %w", err)
	}

	var contributionCount int64
	if err := e.db.Model(&model.ContributionModel{}).
		Where("event_id = ?", id).
		Count(&contributionCount).Error; err != nil {
		return nil, fmt.Errorf("count contributions: %w", err)
	}

	completion := float64(0)
	if event.TargetCents > 0 {
		completion = float64(event.RaisedCents) / float64(event.TargetCents) * 100
	}

	return map[string]interface{}{
		"event_id":           event.Id,
		"raised_cents":       event.RaisedCents,
		"target_cents":       event.TargetCents,
		"completion_percent": completion,
		"contributor_count":  contributorCount,
		"contribution_count": contributionCount,
		"target_reached":     event.RaisedCents >= event.TargetCents,
	}, nil
}

// GetOrganizerStats aggregates dashboard numbers across an organizer's
// events, including the organizer's profile when one exists.
func (e *EventLogic) GetOrganizerStats(organizerId string) (map[string]interface{}, error) {
	events, err := e.GetEventsByOrganizer(organizerId)
	if err != nil {
		return nil, err
	}

	var totalRaised int64
	activeEvents := 0
	eventIds := make([]string, 0, len(events))
	for _, event := range events {
		totalRaised += event.RaisedCents
		if event.RaisedCents < event.TargetCents {
			activeEvents++
		}
		eventIds = append(eventIds, event.Id)
	}

	var totalContributors int64
	if len(eventIds) > 0 {
		if err := e.db.Model(&model.ContributionModel{}).
			Where("event_id IN ?", eventIds).
			Distinct("contributor_email").
			Count(&totalContributors).Error; err != nil {
			return nil, fmt.Errorf("count organizer contributors: %w", err)
		}
	}

	stats := map[string]interface{}{
		"total_raised_cents": totalRaised,
		"total_events":       len(events),
		"active_events":      activeEvents,
		"total_contributors": totalContributors,
	}

	var profile model.ProfileModel
	err = e.db.First(&profile, "organizer_id = ?", organizerId).Error
	if err == nil {
		stats["profile"] = &profile
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load organizer profile: %w", err)
	}

	return stats, nil
}

// GetEventTributes lists generated tributes for an event, newest first.
func (e *EventLogic) GetEventTributes(eventId string) ([]model.TributeModel, error) {
	var tributes []model.TributeModel
	if err := e.db.Where("event_id = ?", eventId).
		Order("created_at DESC").
		Find(&tributes).Error; err != nil {
		return nil, fmt.Errorf("list tributes: %w", err)
	}
	return tributes, nil
}

func (e *EventLogic) validateEvent(event *model.EventModel) error {
	if event.Title == "" {
		return errors.New("event title is required")
	}
	if event.TargetCents <= 0 {
		return errors.New("target amount must be greater than zero")
	}
	if !event.EventType.Valid() {
		return fmt.Errorf("unknown event type: %s", event.EventType)
	}
	if event.OrganizerId == "" {
		return errors.New("organizer id is required")
	}
	return nil
}
