// Package store defines the record-store contract the orchestration layer
// writes through. Implementations provide keyed CRUD, parent-scoped lists
// and, for topics, an atomic conditional update.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shivam222343/verbafest-backend/internal/model"
)

var ErrNotFound = errors.New("record not found")

type SubEvents interface {
	CreateSubEvent(ctx context.Context, se *model.SubEvent) error
	GetSubEvent(ctx context.Context, id string) (*model.SubEvent, error)
}

type Participants interface {
	CreateParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id string) (*model.Participant, error)
	// ParticipantsBySubEvent lists a sub-event's participants; approvedOnly
	// restricts to the registration-approved pool.
	ParticipantsBySubEvent(ctx context.Context, subEventID string, approvedOnly bool) ([]model.Participant, error)
	SaveParticipant(ctx context.Context, p *model.Participant) error
	// SetDerivedStatus bulk-writes the derived half of the status tag,
	// leaving any manual override untouched.
	SetDerivedStatus(ctx context.Context, participantIDs []string, status model.ParticipantStatus) error
}

type Rounds interface {
	CreateRound(ctx context.Context, r *model.Round) error
	// GetRound returns the round with Participants and Winners loaded.
	GetRound(ctx context.Context, id string) (*model.Round, error)
	RoundsBySubEvent(ctx context.Context, subEventID string) ([]model.Round, error)
	MaxRoundNumber(ctx context.Context, subEventID string) (int, error)
	SaveRound(ctx context.Context, r *model.Round) error
	SetShortlist(ctx context.Context, roundID string, participantIDs []string) error
	SetWinners(ctx context.Context, roundID string, participantIDs []string) error
	// DeleteRound removes the round and cascades to its groups, panel
	// assignments and evaluations.
	DeleteRound(ctx context.Context, id string) error
}

type Groups interface {
	CreateGroup(ctx context.Context, g *model.Group, participantIDs []string) error
	// GetGroup returns the group with Participants loaded.
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	GroupsByRound(ctx context.Context, roundID string) ([]model.Group, error)
	MaxGroupNumber(ctx context.Context, roundID string) (int, error)
	SaveGroup(ctx context.Context, g *model.Group) error
	SetGroupMembers(ctx context.Context, groupID string, participantIDs []string) error
}

type Panels interface {
	CreatePanel(ctx context.Context, p *model.Panel) error
	// GetPanel returns the panel with Judges and Parameters loaded.
	GetPanel(ctx context.Context, id string) (*model.Panel, error)
	PanelsBySubEvent(ctx context.Context, subEventID string) ([]model.Panel, error)
	JudgeByAccessCode(ctx context.Context, code string) (*model.Judge, error)
	SaveJudge(ctx context.Context, j *model.Judge) error

	CreateAssignment(ctx context.Context, a *model.PanelAssignment) error
	AssignmentByGroup(ctx context.Context, groupID string) (*model.PanelAssignment, error)
	AssignmentsByPanel(ctx context.Context, panelID string) ([]model.PanelAssignment, error)
	DeleteAssignmentsByGroup(ctx context.Context, groupID string) error
}

type Evaluations interface {
	// EvaluationByJudgeGroup returns the (judge, group) evaluation with
	// Ratings loaded, or ErrNotFound.
	EvaluationByJudgeGroup(ctx context.Context, judgeID, groupID string) (*model.Evaluation, error)
	// UpsertEvaluation replaces the evaluation and its ratings wholesale.
	UpsertEvaluation(ctx context.Context, e *model.Evaluation) error
	EvaluationsByGroup(ctx context.Context, groupID string) ([]model.Evaluation, error)
}

type Topics interface {
	CreateTopics(ctx context.Context, ts []model.Topic) error
	GetTopic(ctx context.Context, id string) (*model.Topic, error)
	// UnusedTopics lists unclaimed topics in creation order.
	UnusedTopics(ctx context.Context, subEventID string) ([]model.Topic, error)
	// ClaimTopic conditionally marks the topic used, keyed on isUsed=false.
	// It reports false when another claimer got there first.
	ClaimTopic(ctx context.Context, topicID, groupID, panelID string, at time.Time) (bool, error)
	ResetTopic(ctx context.Context, topicID string) error
}

// Store is the full record-store surface.
type Store interface {
	SubEvents
	Participants
	Rounds
	Groups
	Panels
	Evaluations
	Topics
}
