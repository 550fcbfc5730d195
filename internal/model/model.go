package model

import "time"

// RoundStatus is the lifecycle state of a Round. Transitions only move
// forward: pending -> active -> completed.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

// ParticipantStatus tracks where a participant is in the competition.
type ParticipantStatus string

const (
	StatusRegistered ParticipantStatus = "registered"
	StatusAvailable  ParticipantStatus = "available"
	StatusBusy       ParticipantStatus = "busy"
	StatusQualified  ParticipantStatus = "qualified"
	StatusRejected   ParticipantStatus = "rejected"
)

// EvaluationStatus is derived per group from how many of the assigned
// panel's judges have submitted non-draft evaluations.
type EvaluationStatus string

const (
	EvalPending    EvaluationStatus = "pending"
	EvalInProgress EvaluationStatus = "in_progress"
	EvalCompleted  EvaluationStatus = "completed"
)

// SubEventFormat distinguishes individual tracks from group tracks.
type SubEventFormat string

const (
	FormatIndividual SubEventFormat = "individual"
	FormatGroup      SubEventFormat = "group"
)

// SubEvent is a competition track owning rounds, panels and topics.
type SubEvent struct {
	ID                      string         `gorm:"primaryKey" json:"id"`
	Name                    string         `gorm:"not null" json:"name"`
	Format                  SubEventFormat `json:"format"`
	IsActiveForRegistration bool           `json:"is_active_for_registration"`
	CreatedAt               time.Time      `json:"created_at"`
}

// Participant belongs to a sub-event via registration.
//
// Status is a tagged value: automatic transitions (round start/end, grouping,
// evaluation completion) write DerivedStatus; a manual admin override writes
// StatusOverride and wins until explicitly cleared.
type Participant struct {
	ID             string             `gorm:"primaryKey" json:"id"`
	SubEventID     string             `gorm:"index;not null" json:"sub_event_id"`
	Name           string             `gorm:"not null" json:"name"`
	Email          string             `json:"email"`
	YearOfStudy    int                `json:"year_of_study"`
	Approved       bool               `json:"approved"`
	DerivedStatus  ParticipantStatus  `json:"-"`
	StatusOverride *ParticipantStatus `json:"-"`
	CreatedAt      time.Time          `json:"created_at"`
}

// CurrentStatus resolves the tagged status value: manual override wins.
func (p *Participant) CurrentStatus() ParticipantStatus {
	if p.StatusOverride != nil {
		return *p.StatusOverride
	}
	if p.DerivedStatus == "" {
		return StatusRegistered
	}
	return p.DerivedStatus
}

// Round is one elimination stage of a sub-event. Participants is the
// shortlist competing in this round; Winners is the set promoted out of it.
type Round struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	SubEventID    string        `gorm:"index;not null" json:"sub_event_id"`
	RoundNumber   int           `gorm:"not null" json:"round_number"`
	Name          string        `json:"name"`
	Venue         string        `json:"venue"`
	Instructions  string        `json:"instructions"`
	IsElimination bool          `json:"is_elimination"`
	Status        RoundStatus   `gorm:"not null" json:"status"`
	Participants  []Participant `gorm:"many2many:round_participants" json:"participants,omitempty"`
	Winners       []Participant `gorm:"many2many:round_winners" json:"winners,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Group is a disjoint slice of a round's shortlist. EvaluationStatus and
// AverageScore are derived from submitted evaluations and recomputed on
// every upsert; they are never inputs to further derivation.
type Group struct {
	ID               string           `gorm:"primaryKey" json:"id"`
	RoundID          string           `gorm:"index;not null" json:"round_id"`
	GroupNumber      int              `gorm:"not null" json:"group_number"`
	GroupName        string           `json:"group_name"`
	PanelID          *string          `gorm:"index" json:"panel_id,omitempty"`
	EvaluationStatus EvaluationStatus `json:"evaluation_status"`
	AverageScore     float64          `json:"average_score"`
	Participants     []Participant    `gorm:"many2many:group_participants" json:"participants,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Panel is a judging bench, reusable across rounds of its sub-event.
type Panel struct {
	ID         string                `gorm:"primaryKey" json:"id"`
	SubEventID string                `gorm:"index;not null" json:"sub_event_id"`
	Name       string                `json:"name"`
	Judges     []Judge               `gorm:"foreignKey:PanelID" json:"judges,omitempty"`
	Parameters []EvaluationParameter `gorm:"foreignKey:PanelID" json:"parameters,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Judge authenticates by access code only; no full login flow.
type Judge struct {
	ID          string `gorm:"primaryKey" json:"id"`
	PanelID     string `gorm:"index;not null" json:"panel_id"`
	Name        string `gorm:"not null" json:"name"`
	Email       string `json:"email"`
	AccessCode  string `gorm:"uniqueIndex;not null" json:"access_code"`
	HasAccessed bool   `json:"has_accessed"`
}

// EvaluationParameter is one scored criterion. Position preserves the
// admin-defined ordering; rating score vectors index into it.
type EvaluationParameter struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	PanelID  string  `gorm:"index;not null" json:"panel_id"`
	Name     string  `gorm:"not null" json:"name"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
	Position int     `json:"position"`
}

// PanelAssignment records that a panel judges a group, tagged with the
// round the assignment was made under. A group has at most one live
// assignment; a panel accumulates assignments across rounds.
type PanelAssignment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	PanelID   string    `gorm:"index;not null" json:"panel_id"`
	GroupID   string    `gorm:"index;not null" json:"group_id"`
	RoundID   string    `gorm:"index;not null" json:"round_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Evaluation is one judge's scoring of one group. The (JudgeID, GroupID)
// pair is unique; repeated saves by the same judge overwrite.
type Evaluation struct {
	ID        string              `gorm:"primaryKey" json:"id"`
	GroupID   string              `gorm:"index;not null" json:"group_id"`
	JudgeID   string              `gorm:"index;not null" json:"judge_id"`
	IsDraft   bool                `json:"is_draft"`
	Ratings   []ParticipantRating `gorm:"foreignKey:EvaluationID" json:"ratings,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ParticipantRating holds one participant's scores within an evaluation,
// ordered to match the panel's parameter list. TotalScore and MaxTotalScore
// are recomputed from Scores on every save.
type ParticipantRating struct {
	ID                   string    `gorm:"primaryKey" json:"id"`
	EvaluationID         string    `gorm:"index;not null" json:"evaluation_id"`
	ParticipantID        string    `gorm:"index;not null" json:"participant_id"`
	Scores               []float64 `gorm:"serializer:json" json:"scores"`
	TotalScore           float64   `json:"total_score"`
	MaxTotalScore        float64   `json:"max_total_score"`
	Remarks              string    `json:"remarks"`
	SelectedForNextRound bool      `json:"selected_for_next_round"`
}

// Topic is a discussion prompt claimed by at most one group at a time.
type Topic struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	SubEventID   string     `gorm:"index;not null" json:"sub_event_id"`
	Content      string     `gorm:"not null" json:"content"`
	IsUsed       bool       `json:"is_used"`
	UsedByGroup  *string    `json:"used_by_group,omitempty"`
	UsedByPanel  *string    `json:"used_by_panel,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
