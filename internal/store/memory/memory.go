// Package memory is a map-backed store.Store used by tests and by the
// server's dev mode. A single mutex guards every collection; claim is a
// compare-and-set under that mutex.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

type Store struct {
	mu sync.RWMutex

	subEvents    map[string]model.SubEvent
	participants map[string]model.Participant
	rounds       map[string]model.Round
	groups       map[string]model.Group
	panels       map[string]model.Panel
	assignments  map[string]model.PanelAssignment
	evaluations  map[string]model.Evaluation
	topics       map[string]model.Topic

	// membership lists, kept in assignment order
	roundShortlist map[string][]string
	roundWinners   map[string][]string
	groupMembers   map[string][]string

	// insertion orders for collections where listing order matters
	participantOrder []string
	assignmentOrder  []string
	evaluationOrder  []string
	topicOrder       []string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		subEvents:      map[string]model.SubEvent{},
		participants:   map[string]model.Participant{},
		rounds:         map[string]model.Round{},
		groups:         map[string]model.Group{},
		panels:         map[string]model.Panel{},
		assignments:    map[string]model.PanelAssignment{},
		evaluations:    map[string]model.Evaluation{},
		topics:         map[string]model.Topic{},
		roundShortlist: map[string][]string{},
		roundWinners:   map[string][]string{},
		groupMembers:   map[string][]string{},
	}
}

func (s *Store) CreateSubEvent(_ context.Context, se *model.SubEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subEvents[se.ID] = *se
	return nil
}

func (s *Store) GetSubEvent(_ context.Context, id string) (*model.SubEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	se, ok := s.subEvents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &se, nil
}

func (s *Store) CreateParticipant(_ context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = *p
	s.participantOrder = append(s.participantOrder, p.ID)
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id string) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ParticipantsBySubEvent(_ context.Context, subEventID string, approvedOnly bool) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Participant
	for _, id := range s.participantOrder {
		p := s.participants[id]
		if p.SubEventID != subEventID {
			continue
		}
		if approvedOnly && !p.Approved {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) SaveParticipant(_ context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; !ok {
		return store.ErrNotFound
	}
	s.participants[p.ID] = *p
	return nil
}

func (s *Store) SetDerivedStatus(_ context.Context, participantIDs []string, status model.ParticipantStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range participantIDs {
		p, ok := s.participants[id]
		if !ok {
			continue
		}
		p.DerivedStatus = status
		s.participants[id] = p
	}
	return nil
}

func (s *Store) CreateRound(_ context.Context, r *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := *r
	rec.Participants = nil
	rec.Winners = nil
	s.rounds[r.ID] = rec
	return nil
}

func (s *Store) GetRound(_ context.Context, id string) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Participants = s.resolve(s.roundShortlist[id])
	r.Winners = s.resolve(s.roundWinners[id])
	return &r, nil
}

// resolve maps participant ids to records, preserving order. Caller holds
// at least a read lock.
func (s *Store) resolve(ids []string) []model.Participant {
	var out []model.Participant
	for _, id := range ids {
		if p, ok := s.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) RoundsBySubEvent(_ context.Context, subEventID string) ([]model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Round
	for id, r := range s.rounds {
		if r.SubEventID != subEventID {
			continue
		}
		r.Participants = s.resolve(s.roundShortlist[id])
		r.Winners = s.resolve(s.roundWinners[id])
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (s *Store) MaxRoundNumber(_ context.Context, subEventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, r := range s.rounds {
		if r.SubEventID == subEventID && r.RoundNumber > max {
			max = r.RoundNumber
		}
	}
	return max, nil
}

func (s *Store) SaveRound(_ context.Context, r *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[r.ID]; !ok {
		return store.ErrNotFound
	}
	rec := *r
	rec.Participants = nil
	rec.Winners = nil
	s.rounds[r.ID] = rec
	return nil
}

func (s *Store) SetShortlist(_ context.Context, roundID string, participantIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[roundID]; !ok {
		return store.ErrNotFound
	}
	s.roundShortlist[roundID] = slices.Clone(participantIDs)
	return nil
}

func (s *Store) SetWinners(_ context.Context, roundID string, participantIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[roundID]; !ok {
		return store.ErrNotFound
	}
	s.roundWinners[roundID] = slices.Clone(participantIDs)
	return nil
}

func (s *Store) DeleteRound(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rounds, id)
	delete(s.roundShortlist, id)
	delete(s.roundWinners, id)
	for gid, g := range s.groups {
		if g.RoundID != id {
			continue
		}
		delete(s.groups, gid)
		delete(s.groupMembers, gid)
		s.deleteEvaluationsByGroupLocked(gid)
		s.deleteAssignmentsByGroupLocked(gid)
	}
	return nil
}

func (s *Store) CreateGroup(_ context.Context, g *model.Group, participantIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := *g
	rec.Participants = nil
	s.groups[g.ID] = rec
	s.groupMembers[g.ID] = slices.Clone(participantIDs)
	return nil
}

func (s *Store) GetGroup(_ context.Context, id string) (*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	g.Participants = s.resolve(s.groupMembers[id])
	return &g, nil
}

func (s *Store) GroupsByRound(_ context.Context, roundID string) ([]model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Group
	for id, g := range s.groups {
		if g.RoundID != roundID {
			continue
		}
		g.Participants = s.resolve(s.groupMembers[id])
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupNumber < out[j].GroupNumber })
	return out, nil
}

func (s *Store) MaxGroupNumber(_ context.Context, roundID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, g := range s.groups {
		if g.RoundID == roundID && g.GroupNumber > max {
			max = g.GroupNumber
		}
	}
	return max, nil
}

func (s *Store) SaveGroup(_ context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; !ok {
		return store.ErrNotFound
	}
	rec := *g
	rec.Participants = nil
	s.groups[g.ID] = rec
	return nil
}

func (s *Store) SetGroupMembers(_ context.Context, groupID string, participantIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return store.ErrNotFound
	}
	s.groupMembers[groupID] = slices.Clone(participantIDs)
	return nil
}

func (s *Store) CreatePanel(_ context.Context, p *model.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := *p
	rec.Judges = slices.Clone(p.Judges)
	rec.Parameters = slices.Clone(p.Parameters)
	s.panels[p.ID] = rec
	return nil
}

func (s *Store) GetPanel(_ context.Context, id string) (*model.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.panels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Judges = slices.Clone(p.Judges)
	p.Parameters = slices.Clone(p.Parameters)
	return &p, nil
}

func (s *Store) PanelsBySubEvent(_ context.Context, subEventID string) ([]model.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Panel
	for _, p := range s.panels {
		if p.SubEventID == subEventID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) JudgeByAccessCode(_ context.Context, code string) (*model.Judge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.panels {
		for _, j := range p.Judges {
			if j.AccessCode == code {
				return &j, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) SaveJudge(_ context.Context, j *model.Judge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panels[j.PanelID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range p.Judges {
		if p.Judges[i].ID == j.ID {
			p.Judges[i] = *j
			s.panels[j.PanelID] = p
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateAssignment(_ context.Context, a *model.PanelAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = *a
	s.assignmentOrder = append(s.assignmentOrder, a.ID)
	return nil
}

func (s *Store) AssignmentByGroup(_ context.Context, groupID string) (*model.PanelAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.assignmentOrder {
		if a, ok := s.assignments[id]; ok && a.GroupID == groupID {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AssignmentsByPanel(_ context.Context, panelID string) ([]model.PanelAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.PanelAssignment
	for _, id := range s.assignmentOrder {
		if a, ok := s.assignments[id]; ok && a.PanelID == panelID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) DeleteAssignmentsByGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteAssignmentsByGroupLocked(groupID)
	return nil
}

func (s *Store) deleteAssignmentsByGroupLocked(groupID string) {
	for id, a := range s.assignments {
		if a.GroupID == groupID {
			delete(s.assignments, id)
		}
	}
}

func (s *Store) EvaluationByJudgeGroup(_ context.Context, judgeID, groupID string) (*model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.evaluations {
		if e.JudgeID == judgeID && e.GroupID == groupID {
			e.Ratings = slices.Clone(e.Ratings)
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertEvaluation(_ context.Context, e *model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, old := range s.evaluations {
		if old.JudgeID == e.JudgeID && old.GroupID == e.GroupID && id != e.ID {
			delete(s.evaluations, id)
			s.removeEvaluationOrderLocked(id)
		}
	}
	if _, ok := s.evaluations[e.ID]; !ok {
		s.evaluationOrder = append(s.evaluationOrder, e.ID)
	}
	rec := *e
	rec.Ratings = slices.Clone(e.Ratings)
	s.evaluations[e.ID] = rec
	return nil
}

func (s *Store) EvaluationsByGroup(_ context.Context, groupID string) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Evaluation
	for _, id := range s.evaluationOrder {
		e, ok := s.evaluations[id]
		if !ok || e.GroupID != groupID {
			continue
		}
		e.Ratings = slices.Clone(e.Ratings)
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) deleteEvaluationsByGroupLocked(groupID string) {
	for id, e := range s.evaluations {
		if e.GroupID == groupID {
			delete(s.evaluations, id)
			s.removeEvaluationOrderLocked(id)
		}
	}
}

func (s *Store) removeEvaluationOrderLocked(id string) {
	s.evaluationOrder = slices.DeleteFunc(s.evaluationOrder, func(x string) bool { return x == id })
}

func (s *Store) CreateTopics(_ context.Context, ts []model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range ts {
		s.topics[t.ID] = t
		s.topicOrder = append(s.topicOrder, t.ID)
	}
	return nil
}

func (s *Store) GetTopic(_ context.Context, id string) (*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) UnusedTopics(_ context.Context, subEventID string) ([]model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Topic
	for _, id := range s.topicOrder {
		t := s.topics[id]
		if t.SubEventID == subEventID && !t.IsUsed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ClaimTopic(_ context.Context, topicID, groupID, panelID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[topicID]
	if !ok {
		return false, store.ErrNotFound
	}
	if t.IsUsed {
		return false, nil
	}
	t.IsUsed = true
	t.UsedByGroup = &groupID
	t.UsedByPanel = &panelID
	t.UsedAt = &at
	s.topics[topicID] = t
	return true, nil
}

func (s *Store) ResetTopic(_ context.Context, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[topicID]
	if !ok {
		return store.ErrNotFound
	}
	t.IsUsed = false
	t.UsedByGroup = nil
	t.UsedByPanel = nil
	t.UsedAt = nil
	s.topics[topicID] = t
	return nil
}
