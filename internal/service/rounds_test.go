package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shivam222343/verbafest-backend/internal/model"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

func TestCreateRound_EnforcesSequence(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	_, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 2})
	require.ErrorIs(t, err, ErrValidation)

	r1, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 1, Name: "Prelims"})
	require.NoError(t, err)
	require.Equal(t, model.RoundPending, r1.Status)

	_, err = svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 2, Name: "Semis"})
	require.NoError(t, err)
}

func TestCreateRound_UnknownSubEvent(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateRound(context.Background(), "nope", RoundConfig{RoundNumber: 1})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetShortlist_RejectsIneligible(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	approved := seedParticipants(t, svc, se.ID, 3, true)
	pending := seedParticipants(t, svc, se.ID, 1, false)

	r, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 1})
	require.NoError(t, err)

	_, err = svc.SetShortlist(ctx, r.ID, append(approved, pending...))
	require.ErrorIs(t, err, ErrInvalidEligibility)

	got, err := svc.SetShortlist(ctx, r.ID, approved)
	require.NoError(t, err)
	require.Len(t, got.Participants, 3)
}

func TestStartRound_EmptyShortlist(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	r, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 1})
	require.NoError(t, err)

	_, err = svc.StartRound(ctx, r.ID)
	require.ErrorIs(t, err, ErrEmptyShortlist)
}

func TestStartRound_MarksShortlistAvailable(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 2, true)
	r := seedActiveRound(t, svc, se.ID, ids)

	require.Equal(t, model.RoundActive, r.Status)
	for _, id := range ids {
		p, err := st.GetParticipant(ctx, id)
		require.NoError(t, err)
		require.Equal(t, model.StatusAvailable, p.CurrentStatus())
	}

	// started rounds cannot start again, nor be reshortlisted
	_, err := svc.StartRound(ctx, r.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.SetShortlist(ctx, r.ID, ids)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStartRound_OverrideStillWins(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 2, true)

	_, err := svc.OverrideParticipantStatus(ctx, ids[0], model.StatusRejected)
	require.NoError(t, err)

	seedActiveRound(t, svc, se.ID, ids)

	p, err := st.GetParticipant(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, p.CurrentStatus(), "manual override survives round start")

	_, err = svc.ClearParticipantOverride(ctx, ids[0])
	require.NoError(t, err)
	p, err = st.GetParticipant(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, model.StatusAvailable, p.CurrentStatus(), "derived value shows through after clear")
}

func TestEndRound_Lifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 2, true)

	r, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 1})
	require.NoError(t, err)
	_, err = svc.EndRound(ctx, r.ID)
	require.ErrorIs(t, err, ErrInvalidState, "pending rounds cannot end")

	_, err = svc.SetShortlist(ctx, r.ID, ids)
	require.NoError(t, err)
	_, err = svc.StartRound(ctx, r.ID)
	require.NoError(t, err)

	ended, err := svc.EndRound(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoundCompleted, ended.Status)

	_, err = svc.EndRound(ctx, r.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSecondRound_EligiblePoolIsPreviousWinners(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 4, true)
	r1 := seedActiveRound(t, svc, se.ID, ids)

	_, err := svc.ManualNominate(ctx, r1.ID, ids[:2])
	require.NoError(t, err)
	_, err = svc.EndRound(ctx, r1.ID)
	require.NoError(t, err)

	r2, err := svc.CreateRound(ctx, se.ID, RoundConfig{RoundNumber: 2, Name: "Finals"})
	require.NoError(t, err)

	_, err = svc.SetShortlist(ctx, r2.ID, ids[:3])
	require.ErrorIs(t, err, ErrInvalidEligibility, "losers of round 1 are not eligible")

	got, err := svc.SetShortlist(ctx, r2.ID, ids[:2])
	require.NoError(t, err)
	require.Len(t, got.Participants, 2)
}

func TestDeleteRound_Cascades(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 4, true)
	r := seedActiveRound(t, svc, se.ID, ids)

	g, err := svc.CreateGroupManual(ctx, r.ID, "", ids[:2])
	require.NoError(t, err)
	panel := seedPanel(t, svc, se.ID, 1)
	require.NoError(t, svc.AssignGroups(ctx, panel.ID, r.ID, []string{g.ID}))

	require.NoError(t, svc.DeleteRound(ctx, r.ID))

	_, err = st.GetRound(ctx, r.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetGroup(ctx, g.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.AssignmentByGroup(ctx, g.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoundSummaries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)
	ids := seedParticipants(t, svc, se.ID, 3, true)
	r := seedActiveRound(t, svc, se.ID, ids)
	_, err := svc.ManualNominate(ctx, r.ID, ids[:1])
	require.NoError(t, err)

	sums, err := svc.RoundSummaries(ctx, se.ID)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.Equal(t, 3, sums[0].ParticipantCount)
	require.Equal(t, 1, sums[0].WinnerCount)
	require.Equal(t, model.RoundActive, sums[0].Status)
}
