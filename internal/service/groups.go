package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/engine"
	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
)

// AutoFormGroups partitions the round's ungrouped available/qualified
// participants into groups using the requested strategy, numbers them
// sequentially within the round, and marks the members busy.
func (s *Service) AutoFormGroups(ctx context.Context, roundID string, groupSize int, strategy engine.Strategy) ([]model.Group, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	grouped, err := s.groupedParticipants(ctx, roundID)
	if err != nil {
		return nil, err
	}
	var pool []model.Participant
	for _, p := range r.Participants {
		if grouped[p.ID] {
			continue
		}
		switch p.CurrentStatus() {
		case model.StatusAvailable, model.StatusQualified:
			pool = append(pool, p)
		}
	}

	parts, err := engine.FormGroups(pool, groupSize, strategy, s.newRNG())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	next, err := s.store.MaxGroupNumber(ctx, roundID)
	if err != nil {
		return nil, err
	}

	var created []model.Group
	for _, members := range parts {
		next++
		g := model.Group{
			ID:               uuid.NewString(),
			RoundID:          roundID,
			GroupNumber:      next,
			GroupName:        fmt.Sprintf("Group %d", next),
			EvaluationStatus: model.EvalPending,
			CreatedAt:        s.now(),
		}
		ids := participantIDs(members)
		if err := s.store.CreateGroup(ctx, &g, ids); err != nil {
			return nil, err
		}
		if err := s.store.SetDerivedStatus(ctx, ids, model.StatusBusy); err != nil {
			return nil, err
		}
		g.Participants = members
		created = append(created, g)

		s.publish(hub.RoundRoom(roundID), hub.EventGroupFormed, map[string]string{
			"group_id": g.ID,
			"round_id": roundID,
		})
	}
	s.log.Info("groups formed",
		zap.String("round_id", roundID),
		zap.String("strategy", string(strategy)),
		zap.Int("groups", len(created)))
	return created, nil
}

// CreateGroupManual builds a group from an explicit participant list. The
// only check is that nobody is already grouped in this round.
func (s *Service) CreateGroupManual(ctx context.Context, roundID, name string, participantIDs []string) (*model.Group, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one participant", ErrValidation)
	}

	unlock := s.lockRound(roundID)
	defer unlock()

	if _, err := s.store.GetRound(ctx, roundID); err != nil {
		return nil, err
	}
	grouped, err := s.groupedParticipants(ctx, roundID)
	if err != nil {
		return nil, err
	}
	for _, id := range participantIDs {
		if grouped[id] {
			return nil, fmt.Errorf("%w: participant %s", ErrConflict, id)
		}
	}

	next, err := s.store.MaxGroupNumber(ctx, roundID)
	if err != nil {
		return nil, err
	}
	g := model.Group{
		ID:               uuid.NewString(),
		RoundID:          roundID,
		GroupNumber:      next + 1,
		GroupName:        name,
		EvaluationStatus: model.EvalPending,
		CreatedAt:        s.now(),
	}
	if g.GroupName == "" {
		g.GroupName = fmt.Sprintf("Group %d", g.GroupNumber)
	}
	if err := s.store.CreateGroup(ctx, &g, participantIDs); err != nil {
		return nil, err
	}
	if err := s.store.SetDerivedStatus(ctx, participantIDs, model.StatusBusy); err != nil {
		return nil, err
	}

	s.publish(hub.RoundRoom(roundID), hub.EventGroupFormed, map[string]string{
		"group_id": g.ID,
		"round_id": roundID,
	})
	return s.store.GetGroup(ctx, g.ID)
}

// UpdateGroupMembers replaces a group's membership wholesale. Removed
// participants go back to the eligible pool; added ones must not belong to
// another group in the round.
func (s *Service) UpdateGroupMembers(ctx context.Context, groupID string, participantIDs []string) (*model.Group, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one participant", ErrValidation)
	}

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockRound(g.RoundID)
	defer unlock()

	groups, err := s.store.GroupsByRound(ctx, g.RoundID)
	if err != nil {
		return nil, err
	}
	elsewhere := map[string]bool{}
	current := map[string]bool{}
	for _, other := range groups {
		for _, p := range other.Participants {
			if other.ID == groupID {
				current[p.ID] = true
			} else {
				elsewhere[p.ID] = true
			}
		}
	}
	keep := map[string]bool{}
	for _, id := range participantIDs {
		if elsewhere[id] {
			return nil, fmt.Errorf("%w: participant %s", ErrConflict, id)
		}
		keep[id] = true
	}

	var removed []string
	for id := range current {
		if !keep[id] {
			removed = append(removed, id)
		}
	}
	var added []string
	for _, id := range participantIDs {
		if !current[id] {
			added = append(added, id)
		}
	}

	if err := s.store.SetGroupMembers(ctx, groupID, participantIDs); err != nil {
		return nil, err
	}
	if err := s.store.SetDerivedStatus(ctx, removed, model.StatusAvailable); err != nil {
		return nil, err
	}
	if err := s.store.SetDerivedStatus(ctx, added, model.StatusBusy); err != nil {
		return nil, err
	}

	s.publish(hub.RoundRoom(g.RoundID), hub.EventGroupUpdated, map[string]string{
		"group_id": groupID,
		"round_id": g.RoundID,
	})
	return s.store.GetGroup(ctx, groupID)
}

// groupedParticipants collects the ids already placed in any group of the
// round; group membership sets must stay pairwise disjoint.
func (s *Service) groupedParticipants(ctx context.Context, roundID string) (map[string]bool, error) {
	groups, err := s.store.GroupsByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	grouped := map[string]bool{}
	for _, g := range groups {
		for _, p := range g.Participants {
			grouped[p.ID] = true
		}
	}
	return grouped, nil
}
