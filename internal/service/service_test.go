package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/hub"
	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st := memory.New()
	svc := New(st, hub.NewHub(ctx), zap.NewNop())
	svc.newRNG = func() *rand.Rand { return rand.New(rand.NewSource(42)) }
	return svc, st
}

func seedSubEvent(t *testing.T, svc *Service) *model.SubEvent {
	t.Helper()
	se, err := svc.CreateSubEvent(context.Background(), "Group Discussion", model.FormatGroup)
	require.NoError(t, err)
	return se
}

func seedParticipants(t *testing.T, svc *Service, subEventID string, n int, approved bool) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		p, err := svc.AddParticipant(context.Background(), subEventID, ParticipantInput{
			Name:        "Participant " + string(rune('A'+i)),
			YearOfStudy: 1 + i%3,
			Approved:    approved,
		})
		require.NoError(t, err)
		ids[i] = p.ID
	}
	return ids
}

func seedPanel(t *testing.T, svc *Service, subEventID string, judgeCount int) *model.Panel {
	t.Helper()
	judges := make([]JudgeInput, judgeCount)
	for i := range judges {
		judges[i] = JudgeInput{
			Name:  "Judge " + string(rune('A'+i)),
			Email: "judge" + string(rune('a'+i)) + "@fest.local",
		}
	}
	panel, err := svc.CreatePanel(context.Background(), subEventID, "Panel 1", judges, []ParameterInput{
		{Name: "Content", MaxScore: 10, Weight: 1},
		{Name: "Delivery", MaxScore: 10, Weight: 1},
	})
	require.NoError(t, err)
	return panel
}

// seedActiveRound creates round 1, shortlists everyone and starts it.
func seedActiveRound(t *testing.T, svc *Service, subEventID string, participantIDs []string) *model.Round {
	t.Helper()
	ctx := context.Background()
	r, err := svc.CreateRound(ctx, subEventID, RoundConfig{RoundNumber: 1, Name: "Prelims"})
	require.NoError(t, err)
	_, err = svc.SetShortlist(ctx, r.ID, participantIDs)
	require.NoError(t, err)
	r, err = svc.StartRound(ctx, r.ID)
	require.NoError(t, err)
	return r
}
