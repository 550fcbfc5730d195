// Package postgres implements store.Store on gorm over Postgres. The topic
// claim is a conditional UPDATE keyed on is_used = false; everything else is
// plain keyed CRUD and parent-scoped lists.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.SubEvent{},
		&model.Participant{},
		&model.Round{},
		&model.Group{},
		&model.Panel{},
		&model.Judge{},
		&model.EvaluationParameter{},
		&model.PanelAssignment{},
		&model.Evaluation{},
		&model.ParticipantRating{},
		&model.Topic{},
	); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) CreateSubEvent(ctx context.Context, se *model.SubEvent) error {
	return s.db.WithContext(ctx).Create(se).Error
}

func (s *Store) GetSubEvent(ctx context.Context, id string) (*model.SubEvent, error) {
	var se model.SubEvent
	if err := s.db.WithContext(ctx).First(&se, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &se, nil
}

func (s *Store) CreateParticipant(ctx context.Context, p *model.Participant) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	var p model.Participant
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ParticipantsBySubEvent(ctx context.Context, subEventID string, approvedOnly bool) ([]model.Participant, error) {
	q := s.db.WithContext(ctx).Where("sub_event_id = ?", subEventID).Order("created_at")
	if approvedOnly {
		q = q.Where("approved = ?", true)
	}
	var out []model.Participant
	return out, q.Find(&out).Error
}

func (s *Store) SaveParticipant(ctx context.Context, p *model.Participant) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *Store) SetDerivedStatus(ctx context.Context, participantIDs []string, status model.ParticipantStatus) error {
	if len(participantIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Participant{}).
		Where("id IN ?", participantIDs).
		Update("derived_status", status).Error
}

func (s *Store) CreateRound(ctx context.Context, r *model.Round) error {
	return s.db.WithContext(ctx).Omit("Participants", "Winners").Create(r).Error
}

func (s *Store) GetRound(ctx context.Context, id string) (*model.Round, error) {
	var r model.Round
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Preload("Winners").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) RoundsBySubEvent(ctx context.Context, subEventID string) ([]model.Round, error) {
	var out []model.Round
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Preload("Winners").
		Where("sub_event_id = ?", subEventID).
		Order("round_number").
		Find(&out).Error
	return out, err
}

func (s *Store) MaxRoundNumber(ctx context.Context, subEventID string) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&model.Round{}).
		Where("sub_event_id = ?", subEventID).
		Select("COALESCE(MAX(round_number), 0)").
		Scan(&max).Error
	return max, err
}

func (s *Store) SaveRound(ctx context.Context, r *model.Round) error {
	return s.db.WithContext(ctx).Omit("Participants", "Winners").Save(r).Error
}

func (s *Store) SetShortlist(ctx context.Context, roundID string, participantIDs []string) error {
	return s.replaceRoundAssoc(ctx, roundID, "Participants", participantIDs)
}

func (s *Store) SetWinners(ctx context.Context, roundID string, participantIDs []string) error {
	return s.replaceRoundAssoc(ctx, roundID, "Winners", participantIDs)
}

func (s *Store) replaceRoundAssoc(ctx context.Context, roundID, assoc string, participantIDs []string) error {
	r := model.Round{ID: roundID}
	refs := make([]model.Participant, len(participantIDs))
	for i, id := range participantIDs {
		refs[i] = model.Participant{ID: id}
	}
	return s.db.WithContext(ctx).Model(&r).Association(assoc).Replace(refs)
}

func (s *Store) DeleteRound(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groupIDs := tx.Model(&model.Group{}).Select("id").Where("round_id = ?", id)
		evalIDs := tx.Model(&model.Evaluation{}).Select("id").Where("group_id IN (?)", groupIDs)
		if err := tx.Where("evaluation_id IN (?)", evalIDs).Delete(&model.ParticipantRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id IN (?)", groupIDs).Delete(&model.Evaluation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", id).Delete(&model.PanelAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM group_participants WHERE group_id IN (?)", groupIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", id).Delete(&model.Group{}).Error; err != nil {
			return err
		}
		r := model.Round{ID: id}
		if err := tx.Model(&r).Association("Participants").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&r).Association("Winners").Clear(); err != nil {
			return err
		}
		return tx.Delete(&r).Error
	})
}

func (s *Store) CreateGroup(ctx context.Context, g *model.Group, participantIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(g).Error; err != nil {
			return err
		}
		refs := make([]model.Participant, len(participantIDs))
		for i, id := range participantIDs {
			refs[i] = model.Participant{ID: id}
		}
		return tx.Model(g).Association("Participants").Replace(refs)
	})
}

func (s *Store) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	if err := s.db.WithContext(ctx).Preload("Participants").First(&g, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (s *Store) GroupsByRound(ctx context.Context, roundID string) ([]model.Group, error) {
	var out []model.Group
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Where("round_id = ?", roundID).
		Order("group_number").
		Find(&out).Error
	return out, err
}

func (s *Store) MaxGroupNumber(ctx context.Context, roundID string) (int, error) {
	var max int
	err := s.db.WithContext(ctx).Model(&model.Group{}).
		Where("round_id = ?", roundID).
		Select("COALESCE(MAX(group_number), 0)").
		Scan(&max).Error
	return max, err
}

func (s *Store) SaveGroup(ctx context.Context, g *model.Group) error {
	return s.db.WithContext(ctx).Omit("Participants").Save(g).Error
}

func (s *Store) SetGroupMembers(ctx context.Context, groupID string, participantIDs []string) error {
	g := model.Group{ID: groupID}
	refs := make([]model.Participant, len(participantIDs))
	for i, id := range participantIDs {
		refs[i] = model.Participant{ID: id}
	}
	return s.db.WithContext(ctx).Model(&g).Association("Participants").Replace(refs)
}

func (s *Store) CreatePanel(ctx context.Context, p *model.Panel) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetPanel(ctx context.Context, id string) (*model.Panel, error) {
	var p model.Panel
	err := s.db.WithContext(ctx).
		Preload("Judges").
		Preload("Parameters", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) PanelsBySubEvent(ctx context.Context, subEventID string) ([]model.Panel, error) {
	var out []model.Panel
	err := s.db.WithContext(ctx).
		Preload("Judges").
		Preload("Parameters", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("sub_event_id = ?", subEventID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (s *Store) JudgeByAccessCode(ctx context.Context, code string) (*model.Judge, error) {
	var j model.Judge
	if err := s.db.WithContext(ctx).First(&j, "access_code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (s *Store) SaveJudge(ctx context.Context, j *model.Judge) error {
	return s.db.WithContext(ctx).Save(j).Error
}

func (s *Store) CreateAssignment(ctx context.Context, a *model.PanelAssignment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) AssignmentByGroup(ctx context.Context, groupID string) (*model.PanelAssignment, error) {
	var a model.PanelAssignment
	if err := s.db.WithContext(ctx).First(&a, "group_id = ?", groupID).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Store) AssignmentsByPanel(ctx context.Context, panelID string) ([]model.PanelAssignment, error) {
	var out []model.PanelAssignment
	err := s.db.WithContext(ctx).
		Where("panel_id = ?", panelID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (s *Store) DeleteAssignmentsByGroup(ctx context.Context, groupID string) error {
	return s.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&model.PanelAssignment{}).Error
}

func (s *Store) EvaluationByJudgeGroup(ctx context.Context, judgeID, groupID string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := s.db.WithContext(ctx).
		Preload("Ratings").
		First(&e, "judge_id = ? AND group_id = ?", judgeID, groupID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Store) UpsertEvaluation(ctx context.Context, e *model.Evaluation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&model.Evaluation{}).Select("id").
			Where("judge_id = ? AND group_id = ?", e.JudgeID, e.GroupID)
		if err := tx.Where("evaluation_id IN (?)", old).Delete(&model.ParticipantRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("judge_id = ? AND group_id = ?", e.JudgeID, e.GroupID).
			Delete(&model.Evaluation{}).Error; err != nil {
			return err
		}
		return tx.Create(e).Error
	})
}

func (s *Store) EvaluationsByGroup(ctx context.Context, groupID string) ([]model.Evaluation, error) {
	var out []model.Evaluation
	err := s.db.WithContext(ctx).
		Preload("Ratings").
		Where("group_id = ?", groupID).
		Order("created_at").
		Find(&out).Error
	return out, err
}

func (s *Store) CreateTopics(ctx context.Context, ts []model.Topic) error {
	if len(ts) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&ts).Error
}

func (s *Store) GetTopic(ctx context.Context, id string) (*model.Topic, error) {
	var t model.Topic
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) UnusedTopics(ctx context.Context, subEventID string) ([]model.Topic, error) {
	var out []model.Topic
	err := s.db.WithContext(ctx).
		Where("sub_event_id = ? AND is_used = ?", subEventID, false).
		Order("created_at").
		Find(&out).Error
	return out, err
}

// ClaimTopic races on the is_used flag: RowsAffected is zero when a
// concurrent claimer flipped it first.
func (s *Store) ClaimTopic(ctx context.Context, topicID, groupID, panelID string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Topic{}).
		Where("id = ? AND is_used = ?", topicID, false).
		Updates(map[string]any{
			"is_used":       true,
			"used_by_group": groupID,
			"used_by_panel": panelID,
			"used_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ResetTopic(ctx context.Context, topicID string) error {
	res := s.db.WithContext(ctx).Model(&model.Topic{}).
		Where("id = ?", topicID).
		Updates(map[string]any{
			"is_used":       false,
			"used_by_group": nil,
			"used_by_panel": nil,
			"used_at":       nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
