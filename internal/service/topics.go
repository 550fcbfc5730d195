package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
)

// CreateTopics bulk-loads discussion prompts into a sub-event's pool.
func (s *Service) CreateTopics(ctx context.Context, subEventID string, contents []string) ([]model.Topic, error) {
	if _, err := s.store.GetSubEvent(ctx, subEventID); err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: no topics supplied", ErrValidation)
	}
	topics := make([]model.Topic, 0, len(contents))
	for _, c := range contents {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("%w: empty topic content", ErrValidation)
		}
		topics = append(topics, model.Topic{
			ID:         uuid.NewString(),
			SubEventID: subEventID,
			Content:    c,
			CreatedAt:  s.now(),
		})
	}
	if err := s.store.CreateTopics(ctx, topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// ClaimTopic hands one unused topic of the sub-event to a group. Claims on
// a sub-event are serialized, and the store-level flip is conditional on
// isUsed=false, so two claimers can never land on the same topic; a lost
// race retries against the next unused topic.
func (s *Service) ClaimTopic(ctx context.Context, subEventID, groupID, panelID string) (*model.Topic, error) {
	unlock := s.lockTopics(subEventID)
	defer unlock()
	return s.claimOne(ctx, subEventID, groupID, panelID)
}

func (s *Service) claimOne(ctx context.Context, subEventID, groupID, panelID string) (*model.Topic, error) {
	unused, err := s.store.UnusedTopics(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	for _, t := range unused {
		claimed, err := s.store.ClaimTopic(ctx, t.ID, groupID, panelID, s.now())
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue // raced on this one, try the next
		}
		topic, err := s.store.GetTopic(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		payload := map[string]string{
			"topic_id": topic.ID,
			"group_id": groupID,
			"panel_id": panelID,
		}
		s.publish(hub.SubEventRoom(subEventID), hub.EventTopicClaimed, payload)
		s.publish(hub.PanelRoom(panelID), hub.EventTopicClaimed, payload)
		s.log.Info("topic claimed", zap.String("topic_id", topic.ID), zap.String("group_id", groupID))
		return topic, nil
	}
	return nil, ErrNoTopicsAvailable
}

// TopicClaim is one entry of a bulk claim.
type TopicClaim struct {
	GroupID string `json:"group_id"`
	PanelID string `json:"panel_id"`
}

// ClaimTopics is the batched claim. Per-topic semantics match ClaimTopic;
// when the pool runs dry mid-batch, the topics already claimed stand and
// the caller gets them back alongside ErrNoTopicsAvailable.
func (s *Service) ClaimTopics(ctx context.Context, subEventID string, claims []TopicClaim) ([]model.Topic, error) {
	if len(claims) == 0 {
		return nil, fmt.Errorf("%w: no claims supplied", ErrValidation)
	}

	unlock := s.lockTopics(subEventID)
	defer unlock()

	var claimed []model.Topic
	for _, c := range claims {
		t, err := s.claimOne(ctx, subEventID, c.GroupID, c.PanelID)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, *t)
	}

	ids := make([]string, len(claimed))
	for i, t := range claimed {
		ids[i] = t.ID
	}
	s.publish(hub.SubEventRoom(subEventID), hub.EventTopicUsedBulk, map[string]string{
		"topic_ids":    strings.Join(ids, ","),
		"sub_event_id": subEventID,
	})
	return claimed, nil
}

// ResetTopic clears a topic's claim, making it eligible again. Admin-only.
func (s *Service) ResetTopic(ctx context.Context, topicID string) (*model.Topic, error) {
	t, err := s.store.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockTopics(t.SubEventID)
	defer unlock()

	if err := s.store.ResetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	t, err = s.store.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	s.publish(hub.SubEventRoom(t.SubEventID), hub.EventTopicReset, map[string]string{
		"topic_id": t.ID,
	})
	return t, nil
}
