package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/engine"
	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

// RatingInput is one judge's scoring of one participant, scores ordered to
// match the panel's parameter list.
type RatingInput struct {
	ParticipantID        string    `json:"participant_id"`
	Scores               []float64 `json:"scores"`
	Remarks              string    `json:"remarks"`
	SelectedForNextRound bool      `json:"selected_for_next_round"`
}

// SubmitEvaluation upserts the (judge, group) evaluation. Out-of-range
// scores are clamped into [0, maxScore], not rejected. Repeated saves by
// the same judge overwrite; drafts persist but never count toward the
// group's submitted tally. Group status and average are recomputed before
// returning.
func (s *Service) SubmitEvaluation(ctx context.Context, accessCode, groupID string, ratings []RatingInput, isDraft bool) (*model.Group, error) {
	judge, err := s.store.JudgeByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	panel, err := s.store.GetPanel(ctx, judge.PanelID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockGroup(groupID)
	defer unlock()

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.PanelID == nil || *g.PanelID != panel.ID {
		return nil, fmt.Errorf("%w: group %s", ErrNotAssigned, groupID)
	}

	members := map[string]bool{}
	for _, p := range g.Participants {
		members[p.ID] = true
	}
	byParticipant := map[string]RatingInput{}
	for _, in := range ratings {
		if !members[in.ParticipantID] {
			return nil, fmt.Errorf("%w: participant %s is not in group %s", ErrValidation, in.ParticipantID, groupID)
		}
		byParticipant[in.ParticipantID] = in
	}

	eval := &model.Evaluation{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		JudgeID:   judge.ID,
		IsDraft:   isDraft,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	prev, err := s.store.EvaluationByJudgeGroup(ctx, judge.ID, groupID)
	switch {
	case err == nil:
		eval.ID = prev.ID
		eval.CreatedAt = prev.CreatedAt
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	for _, p := range g.Participants {
		in := byParticipant[p.ID]
		scores := engine.ClampScores(in.Scores, panel.Parameters)
		total, maxTotal := engine.Totals(scores, panel.Parameters)
		eval.Ratings = append(eval.Ratings, model.ParticipantRating{
			ID:                   uuid.NewString(),
			EvaluationID:         eval.ID,
			ParticipantID:        p.ID,
			Scores:               scores,
			TotalScore:           total,
			MaxTotalScore:        maxTotal,
			Remarks:              in.Remarks,
			SelectedForNextRound: in.SelectedForNextRound,
		})
	}
	if err := s.store.UpsertEvaluation(ctx, eval); err != nil {
		return nil, err
	}

	g, err = s.recomputeGroup(ctx, g, panel)
	if err != nil {
		return nil, err
	}

	s.publish(hub.RoomAdmin, hub.EventEvaluationSubmitted, map[string]string{
		"group_id": groupID,
		"judge_id": judge.ID,
		"round_id": g.RoundID,
	})
	s.publish(hub.PanelRoom(panel.ID), hub.EventEvaluationUpdated, map[string]string{
		"group_id": groupID,
		"judge_id": judge.ID,
	})
	s.log.Info("evaluation saved",
		zap.String("group_id", groupID),
		zap.String("judge_id", judge.ID),
		zap.Bool("draft", isDraft),
		zap.String("status", string(g.EvaluationStatus)))
	return g, nil
}

// recomputeGroup refreshes the derived evaluation status and average from
// the assigned panel's evaluations; evaluations left behind by a
// previously assigned panel are ignored. When judging completes, the
// group's members go back to available: they are done being judged.
func (s *Service) recomputeGroup(ctx context.Context, g *model.Group, panel *model.Panel) (*model.Group, error) {
	evals, err := s.store.EvaluationsByGroup(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	evals = engine.ByJudges(evals, panel.Judges)
	prev := g.EvaluationStatus
	g.EvaluationStatus = engine.GroupStatus(engine.SubmittedCount(evals), len(panel.Judges))
	g.AverageScore = engine.GroupAverage(evals)
	if err := s.store.SaveGroup(ctx, g); err != nil {
		return nil, err
	}
	if prev != model.EvalCompleted && g.EvaluationStatus == model.EvalCompleted {
		ids := participantIDs(g.Participants)
		if err := s.store.SetDerivedStatus(ctx, ids, model.StatusAvailable); err != nil {
			return nil, err
		}
		s.notifyParticipants(ids, g.RoundID)
	}
	return s.store.GetGroup(ctx, g.ID)
}

// PromoteSelected adds every participant nominated by at least one
// non-draft evaluation to the round's winners. Requires at least one fully
// judged group; idempotent across repeated calls.
func (s *Service) PromoteSelected(ctx context.Context, roundID string) (*model.Round, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.GroupsByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	anyCompleted := false
	for _, g := range groups {
		if g.EvaluationStatus == model.EvalCompleted {
			anyCompleted = true
			break
		}
	}
	if !anyCompleted {
		return nil, fmt.Errorf("%w: no group has completed evaluation", ErrInvalidState)
	}

	var nominated []string
	for _, g := range groups {
		evals, err := s.store.EvaluationsByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		nominated = append(nominated, engine.Nominees(evals)...)
	}
	return s.promote(ctx, r, nominated)
}

// ManualNominate promotes an explicit participant list; unlike
// PromoteSelected it carries no completed-group precondition, but every id
// must be on the round's shortlist.
func (s *Service) ManualNominate(ctx context.Context, roundID string, participantIDs []string) (*model.Round, error) {
	unlock := s.lockRound(roundID)
	defer unlock()

	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	shortlisted := map[string]bool{}
	for _, p := range r.Participants {
		shortlisted[p.ID] = true
	}
	for _, id := range participantIDs {
		if !shortlisted[id] {
			return nil, fmt.Errorf("%w: participant %s is not shortlisted in this round", ErrInvalidEligibility, id)
		}
	}
	return s.promote(ctx, r, participantIDs)
}

// promote merges ids into r.Winners, deduplicated, keeping first-promoted
// order so repeated promotion is a no-op.
func (s *Service) promote(ctx context.Context, r *model.Round, ids []string) (*model.Round, error) {
	seen := map[string]bool{}
	var winners []string
	for _, p := range r.Winners {
		seen[p.ID] = true
		winners = append(winners, p.ID)
	}
	var newly []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			winners = append(winners, id)
			newly = append(newly, id)
		}
	}
	if len(newly) > 0 {
		if err := s.store.SetWinners(ctx, r.ID, winners); err != nil {
			return nil, err
		}
		if err := s.store.SetDerivedStatus(ctx, newly, model.StatusQualified); err != nil {
			return nil, err
		}
		s.notifyParticipants(newly, r.ID)
		s.log.Info("participants promoted", zap.String("round_id", r.ID), zap.Int("new_winners", len(newly)))
	}
	return s.store.GetRound(ctx, r.ID)
}

// GroupLive pairs a group with its evaluations for judge-level drill-down.
type GroupLive struct {
	Group       model.Group        `json:"group"`
	Evaluations []model.Evaluation `json:"evaluations"`
}

// LiveView is the live evaluation answer for one round: groups ranked by
// average score (ties keep creation order) with their evaluations.
type LiveView struct {
	Round  model.Round `json:"round"`
	Groups []GroupLive `json:"groups"`
}

func (s *Service) LiveEvaluation(ctx context.Context, roundID string) (*LiveView, error) {
	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.GroupsByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	view := &LiveView{Round: *r}
	for _, g := range engine.RankGroups(groups) {
		evals, err := s.store.EvaluationsByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		view.Groups = append(view.Groups, GroupLive{Group: g, Evaluations: evals})
	}
	return view, nil
}
