package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
)

// RoundConfig carries the administrator's inputs for a new round.
type RoundConfig struct {
	RoundNumber   int    `json:"round_number"`
	Name          string `json:"name"`
	Venue         string `json:"venue"`
	Instructions  string `json:"instructions"`
	IsElimination bool   `json:"is_elimination"`
}

// CreateRound opens the next round of a sub-event in pending state. Round
// numbers are strictly sequential: anything other than max+1 is rejected.
func (s *Service) CreateRound(ctx context.Context, subEventID string, cfg RoundConfig) (*model.Round, error) {
	if _, err := s.store.GetSubEvent(ctx, subEventID); err != nil {
		return nil, err
	}

	unlock := s.lockRounds(subEventID)
	defer unlock()

	max, err := s.store.MaxRoundNumber(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	if cfg.RoundNumber != max+1 {
		return nil, fmt.Errorf("%w: round number must be %d, got %d", ErrValidation, max+1, cfg.RoundNumber)
	}

	r := &model.Round{
		ID:            uuid.NewString(),
		SubEventID:    subEventID,
		RoundNumber:   cfg.RoundNumber,
		Name:          cfg.Name,
		Venue:         cfg.Venue,
		Instructions:  cfg.Instructions,
		IsElimination: cfg.IsElimination,
		Status:        model.RoundPending,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateRound(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("round created",
		zap.String("sub_event_id", subEventID),
		zap.Int("round_number", r.RoundNumber))
	return r, nil
}

// SetShortlist replaces the round's participant set. Every id must come
// from the eligible pool: the sub-event's approved participants for round
// 1, the previous round's winners otherwise. Only pending rounds may be
// reshortlisted.
func (s *Service) SetShortlist(ctx context.Context, roundID string, participantIDs []string) (*model.Round, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RoundPending {
		return nil, fmt.Errorf("%w: shortlist is frozen once the round starts", ErrInvalidState)
	}

	pool, err := s.eligiblePool(ctx, r)
	if err != nil {
		return nil, err
	}
	eligible := map[string]bool{}
	for _, p := range pool {
		eligible[p.ID] = true
	}
	for _, id := range participantIDs {
		if !eligible[id] {
			return nil, fmt.Errorf("%w: participant %s", ErrInvalidEligibility, id)
		}
	}

	if err := s.store.SetShortlist(ctx, roundID, participantIDs); err != nil {
		return nil, err
	}
	return s.store.GetRound(ctx, roundID)
}

// eligiblePool resolves who may be shortlisted into r.
func (s *Service) eligiblePool(ctx context.Context, r *model.Round) ([]model.Participant, error) {
	if r.RoundNumber == 1 {
		return s.store.ParticipantsBySubEvent(ctx, r.SubEventID, true)
	}
	rounds, err := s.store.RoundsBySubEvent(ctx, r.SubEventID)
	if err != nil {
		return nil, err
	}
	for _, prev := range rounds {
		if prev.RoundNumber == r.RoundNumber-1 {
			return prev.Winners, nil
		}
	}
	return nil, fmt.Errorf("%w: round %d has no predecessor", ErrInvalidState, r.RoundNumber)
}

// StartRound moves pending -> active and marks every shortlisted
// participant available. Manual status overrides are untouched and keep
// winning on read.
func (s *Service) StartRound(ctx context.Context, roundID string) (*model.Round, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RoundPending {
		return nil, fmt.Errorf("%w: round is %s", ErrInvalidState, r.Status)
	}
	if len(r.Participants) == 0 {
		return nil, ErrEmptyShortlist
	}

	r.Status = model.RoundActive
	if err := s.store.SaveRound(ctx, r); err != nil {
		return nil, err
	}
	ids := participantIDs(r.Participants)
	if err := s.store.SetDerivedStatus(ctx, ids, model.StatusAvailable); err != nil {
		return nil, err
	}

	s.publish(hub.SubEventRoom(r.SubEventID), hub.EventRoundStarted, map[string]string{
		"round_id": r.ID,
	})
	s.notifyParticipants(ids, r.ID)
	s.log.Info("round started", zap.String("round_id", r.ID), zap.Int("shortlisted", len(ids)))
	return r, nil
}

// EndRound moves active -> completed, releasing every round participant
// back to available. Winners are whatever promotions accumulated before
// this point; ending a round decides nothing by itself.
func (s *Service) EndRound(ctx context.Context, roundID string) (*model.Round, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RoundActive {
		return nil, fmt.Errorf("%w: round is %s", ErrInvalidState, r.Status)
	}

	r.Status = model.RoundCompleted
	if err := s.store.SaveRound(ctx, r); err != nil {
		return nil, err
	}
	ids := participantIDs(r.Participants)
	if err := s.store.SetDerivedStatus(ctx, ids, model.StatusAvailable); err != nil {
		return nil, err
	}

	s.publish(hub.SubEventRoom(r.SubEventID), hub.EventRoundEnded, map[string]string{
		"round_id": r.ID,
	})
	s.notifyParticipants(ids, r.ID)
	s.log.Info("round ended", zap.String("round_id", r.ID), zap.Int("winners", len(r.Winners)))
	return r, nil
}

// DeleteRound removes the round and everything scoped to it: groups,
// panel assignments and evaluations. Irreversible.
func (s *Service) DeleteRound(ctx context.Context, roundID string) error {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRound(ctx, roundID); err != nil {
		return err
	}
	s.log.Info("round deleted", zap.String("round_id", roundID), zap.Int("round_number", r.RoundNumber))
	return nil
}

// RoundSummary is the admin overview row for one round.
type RoundSummary struct {
	ID               string            `json:"id"`
	RoundNumber      int               `json:"round_number"`
	Name             string            `json:"name"`
	Status           model.RoundStatus `json:"status"`
	IsElimination    bool              `json:"is_elimination"`
	ParticipantCount int               `json:"participant_count"`
	WinnerCount      int               `json:"winner_count"`
}

// RoundSummaries lists a sub-event's rounds with participant and winner
// counts, ordered by round number.
func (s *Service) RoundSummaries(ctx context.Context, subEventID string) ([]RoundSummary, error) {
	if _, err := s.store.GetSubEvent(ctx, subEventID); err != nil {
		return nil, err
	}
	rounds, err := s.store.RoundsBySubEvent(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	out := make([]RoundSummary, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, RoundSummary{
			ID:               r.ID,
			RoundNumber:      r.RoundNumber,
			Name:             r.Name,
			Status:           r.Status,
			IsElimination:    r.IsElimination,
			ParticipantCount: len(r.Participants),
			WinnerCount:      len(r.Winners),
		})
	}
	return out, nil
}

func (s *Service) notifyParticipants(ids []string, roundID string) {
	for _, id := range ids {
		s.publish(hub.ParticipantRoom(id), hub.EventParticipantStatus, map[string]string{
			"participant_id": id,
			"round_id":       roundID,
		})
	}
}

func participantIDs(ps []model.Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
