package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimTopic_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	topics, err := svc.CreateTopics(ctx, se.ID, []string{"AI in education", "Remote work"})
	require.NoError(t, err)
	require.Len(t, topics, 2)

	claimed, err := svc.ClaimTopic(ctx, se.ID, "group-1", "panel-1")
	require.NoError(t, err)
	require.True(t, claimed.IsUsed)
	require.NotNil(t, claimed.UsedByGroup)
	require.Equal(t, "group-1", *claimed.UsedByGroup)
	require.NotNil(t, claimed.UsedAt)

	reset, err := svc.ResetTopic(ctx, claimed.ID)
	require.NoError(t, err)
	require.False(t, reset.IsUsed)
	require.Nil(t, reset.UsedByGroup)
	require.Nil(t, reset.UsedAt)
}

func TestClaimTopic_PoolExhausted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	_, err := svc.CreateTopics(ctx, se.ID, []string{"Only one"})
	require.NoError(t, err)

	_, err = svc.ClaimTopic(ctx, se.ID, "group-1", "panel-1")
	require.NoError(t, err)
	_, err = svc.ClaimTopic(ctx, se.ID, "group-2", "panel-1")
	require.ErrorIs(t, err, ErrNoTopicsAvailable)
}

func TestClaimTopic_ConcurrentClaimersGetDistinctTopics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	_, err := svc.CreateTopics(ctx, se.ID, []string{"Single topic"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ClaimTopic(ctx, se.ID, "group-"+string(rune('1'+i)), "panel-1")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ErrNoTopicsAvailable)
		}
	}
	require.Equal(t, 1, won, "exactly one claimer gets the topic")
}

func TestClaimTopics_PartialClaimsStand(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	_, err := svc.CreateTopics(ctx, se.ID, []string{"First", "Second"})
	require.NoError(t, err)

	claimed, err := svc.ClaimTopics(ctx, se.ID, []TopicClaim{
		{GroupID: "g1", PanelID: "p1"},
		{GroupID: "g2", PanelID: "p1"},
		{GroupID: "g3", PanelID: "p1"},
	})
	require.ErrorIs(t, err, ErrNoTopicsAvailable)
	require.Len(t, claimed, 2, "claims made before exhaustion stand")

	unused, err := st.UnusedTopics(ctx, se.ID)
	require.NoError(t, err)
	require.Empty(t, unused)
}

func TestCreateTopics_RejectsEmptyContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	se := seedSubEvent(t, svc)

	_, err := svc.CreateTopics(ctx, se.ID, nil)
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateTopics(ctx, se.ID, []string{"ok", "   "})
	require.ErrorIs(t, err, ErrValidation)
	require.False(t, errors.Is(err, ErrNoTopicsAvailable))
}
