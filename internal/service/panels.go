package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

type JudgeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ParameterInput struct {
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
}

// CreatePanel sets up a judging bench with its judges and scoring
// parameters. Judge emails must be unique within the panel; access codes
// are generated unique system-wide.
func (s *Service) CreatePanel(ctx context.Context, subEventID, name string, judges []JudgeInput, params []ParameterInput) (*model.Panel, error) {
	if _, err := s.store.GetSubEvent(ctx, subEventID); err != nil {
		return nil, err
	}
	if len(judges) == 0 {
		return nil, fmt.Errorf("%w: a panel needs at least one judge", ErrValidation)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: a panel needs at least one evaluation parameter", ErrValidation)
	}
	seen := map[string]bool{}
	for _, j := range judges {
		if j.Email != "" && seen[j.Email] {
			return nil, fmt.Errorf("%w: duplicate judge email %s", ErrValidation, j.Email)
		}
		seen[j.Email] = true
	}
	for _, p := range params {
		if p.MaxScore <= 0 {
			return nil, fmt.Errorf("%w: parameter %q needs a positive max score", ErrValidation, p.Name)
		}
	}

	panel := &model.Panel{
		ID:         uuid.NewString(),
		SubEventID: subEventID,
		Name:       name,
		CreatedAt:  s.now(),
	}
	for _, j := range judges {
		code, err := s.uniqueAccessCode(ctx)
		if err != nil {
			return nil, err
		}
		panel.Judges = append(panel.Judges, model.Judge{
			ID:         uuid.NewString(),
			PanelID:    panel.ID,
			Name:       j.Name,
			Email:      j.Email,
			AccessCode: code,
		})
	}
	for i, p := range params {
		panel.Parameters = append(panel.Parameters, model.EvaluationParameter{
			ID:       uuid.NewString(),
			PanelID:  panel.ID,
			Name:     p.Name,
			MaxScore: p.MaxScore,
			Weight:   p.Weight,
			Position: i,
		})
	}
	if err := s.store.CreatePanel(ctx, panel); err != nil {
		return nil, err
	}

	s.publish(hub.RoomAdmin, hub.EventPanelCreated, map[string]string{
		"panel_id":     panel.ID,
		"sub_event_id": subEventID,
	})
	s.log.Info("panel created", zap.String("panel_id", panel.ID), zap.Int("judges", len(panel.Judges)))
	return panel, nil
}

// AssignGroups hands groups of a round to a panel. A group already held by
// another panel moves; at most one panel judges a group at a time.
func (s *Service) AssignGroups(ctx context.Context, panelID, roundID string, groupIDs []string) error {
	panel, err := s.store.GetPanel(ctx, panelID)
	if err != nil {
		return err
	}
	r, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	if r.SubEventID != panel.SubEventID {
		return fmt.Errorf("%w: panel and round belong to different sub-events", ErrValidation)
	}

	unlock := s.lockRound(roundID)
	defer unlock()

	for _, gid := range groupIDs {
		if err := s.assignGroup(ctx, panel, roundID, gid); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) assignGroup(ctx context.Context, panel *model.Panel, roundID, groupID string) error {
	unlock := s.lockGroup(groupID)
	defer unlock()

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.RoundID != roundID {
		return fmt.Errorf("%w: group %s is not in round %s", ErrValidation, groupID, roundID)
	}
	if err := s.store.DeleteAssignmentsByGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.store.CreateAssignment(ctx, &model.PanelAssignment{
		ID:        uuid.NewString(),
		PanelID:   panel.ID,
		GroupID:   groupID,
		RoundID:   roundID,
		CreatedAt: s.now(),
	}); err != nil {
		return err
	}
	g.PanelID = &panel.ID
	if err := s.store.SaveGroup(ctx, g); err != nil {
		return err
	}
	// Derived status and average are relative to the assigned panel's
	// judges; a moved group must not keep the previous panel's tally.
	if _, err := s.recomputeGroup(ctx, g, panel); err != nil {
		return err
	}

	s.publish(hub.PanelRoom(panel.ID), hub.EventGroupAssigned, map[string]string{
		"group_id": groupID,
		"round_id": roundID,
		"panel_id": panel.ID,
	})
	return nil
}

// AccessView is what an access-code resolution returns: the judge, their
// panel, and the panel's not-yet-completed groups.
type AccessView struct {
	Judge  model.Judge   `json:"judge"`
	Panel  model.Panel   `json:"panel"`
	Groups []model.Group `json:"groups"`
}

// ResolveAccess turns a judge access code into the judge's working set.
// The first successful resolution flips hasAccessed and tells the admin
// room a judge arrived.
func (s *Service) ResolveAccess(ctx context.Context, accessCode string) (*AccessView, error) {
	judge, err := s.store.JudgeByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	panel, err := s.store.GetPanel(ctx, judge.PanelID)
	if err != nil {
		return nil, err
	}

	if !judge.HasAccessed {
		judge.HasAccessed = true
		if err := s.store.SaveJudge(ctx, judge); err != nil {
			return nil, err
		}
		s.publish(hub.RoomAdmin, hub.EventJudgeLoggedIn, map[string]string{
			"judge_id": judge.ID,
			"panel_id": panel.ID,
		})
	}

	assignments, err := s.store.AssignmentsByPanel(ctx, panel.ID)
	if err != nil {
		return nil, err
	}
	var groups []model.Group
	for _, a := range assignments {
		g, err := s.store.GetGroup(ctx, a.GroupID)
		if errors.Is(err, store.ErrNotFound) {
			continue // group deleted since assignment
		}
		if err != nil {
			return nil, err
		}
		if g.EvaluationStatus != model.EvalCompleted {
			groups = append(groups, *g)
		}
	}
	return &AccessView{Judge: *judge, Panel: *panel, Groups: groups}, nil
}

const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateAccessCode() (string, error) {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}

func (s *Service) uniqueAccessCode(ctx context.Context) (string, error) {
	for {
		code, err := generateAccessCode()
		if err != nil {
			return "", err
		}
		_, err = s.store.JudgeByAccessCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// collision, regenerate
	}
}
