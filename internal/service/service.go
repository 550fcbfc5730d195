// Package service is the orchestration façade: every write to shared
// round/group/panel/evaluation/topic state goes through here, serialized
// per key, with derived state recomputed and a broadcast emitted after the
// write commits. Broadcasts are hints; a failed delivery never rolls back
// a write.
package service

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

type Service struct {
	store store.Store
	hub   *hub.Hub
	log   *zap.Logger

	now    func() time.Time
	newRNG func() *rand.Rand

	locks keyedMutex
}

func New(st store.Store, h *hub.Hub, log *zap.Logger) *Service {
	return &Service{
		store: st,
		hub:   h,
		log:   log,
		now:   time.Now,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// keyedMutex hands out one mutex per logical record key, giving the
// single-writer-per-record discipline the mutation paths need. Mutexes are
// never reclaimed; the key space is bounded by live entities.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m := k.locks[key]
	if m == nil {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *Service) lockRound(roundID string) func()     { return s.locks.lock("round:" + roundID) }
func (s *Service) lockGroup(groupID string) func()     { return s.locks.lock("group:" + groupID) }
func (s *Service) lockRounds(subEventID string) func() { return s.locks.lock("rounds:" + subEventID) }
func (s *Service) lockTopics(subEventID string) func() { return s.locks.lock("topics:" + subEventID) }

func (s *Service) publish(room, event string, payload map[string]string) {
	s.hub.Publish(room, event, payload)
}
