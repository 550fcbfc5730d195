package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
)

// CreateSubEvent opens a new competition track.
func (s *Service) CreateSubEvent(ctx context.Context, name string, format model.SubEventFormat) (*model.SubEvent, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: sub-event name required", ErrValidation)
	}
	switch format {
	case model.FormatIndividual, model.FormatGroup:
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidation, format)
	}
	se := &model.SubEvent{
		ID:                      uuid.NewString(),
		Name:                    name,
		Format:                  format,
		IsActiveForRegistration: true,
		CreatedAt:               s.now(),
	}
	if err := s.store.CreateSubEvent(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// ParticipantInput is the admin-side registration record. The actual
// registration intake (forms, payment proof) lives outside this service;
// this is the already-vetted result landing in the pool.
type ParticipantInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	YearOfStudy int    `json:"year_of_study"`
	Approved    bool   `json:"approved"`
}

func (s *Service) AddParticipant(ctx context.Context, subEventID string, in ParticipantInput) (*model.Participant, error) {
	if _, err := s.store.GetSubEvent(ctx, subEventID); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: participant name required", ErrValidation)
	}
	p := &model.Participant{
		ID:            uuid.NewString(),
		SubEventID:    subEventID,
		Name:          in.Name,
		Email:         in.Email,
		YearOfStudy:   in.YearOfStudy,
		Approved:      in.Approved,
		DerivedStatus: model.StatusRegistered,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, err
	}
	s.publish(hub.RoomAdmin, hub.EventAdminRequest, map[string]string{
		"participant_id": p.ID,
		"sub_event_id":   subEventID,
	})
	return p, nil
}

// OverrideParticipantStatus pins a participant's status manually. The
// override wins over every derived transition until cleared.
func (s *Service) OverrideParticipantStatus(ctx context.Context, participantID string, status model.ParticipantStatus) (*model.Participant, error) {
	switch status {
	case model.StatusRegistered, model.StatusAvailable, model.StatusBusy,
		model.StatusQualified, model.StatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	p.StatusOverride = &status
	if err := s.store.SaveParticipant(ctx, p); err != nil {
		return nil, err
	}
	s.publish(hub.ParticipantRoom(p.ID), hub.EventParticipantStatus, map[string]string{
		"participant_id": p.ID,
		"status":         string(status),
	})
	return p, nil
}

// ClearParticipantOverride drops the manual pin; the derived status shows
// through again.
func (s *Service) ClearParticipantOverride(ctx context.Context, participantID string) (*model.Participant, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	p.StatusOverride = nil
	if err := s.store.SaveParticipant(ctx, p); err != nil {
		return nil, err
	}
	s.publish(hub.ParticipantRoom(p.ID), hub.EventParticipantStatus, map[string]string{
		"participant_id": p.ID,
		"status":         string(p.CurrentStatus()),
	})
	return p, nil
}
