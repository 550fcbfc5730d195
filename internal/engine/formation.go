// Package engine holds the pure domain logic: group formation, evaluation
// aggregation and leaderboard ordering. Nothing here touches storage or the
// broadcast bus; callers pass state in and persist what comes back.
package engine

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/shivam222343/verbafest-backend/internal/model"
)

var ErrGroupSize = errors.New("group size must be at least 2")
var ErrUnknownStrategy = errors.New("unknown formation strategy")
var ErrEmptyPool = errors.New("no eligible participants to group")

type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategyYear   Strategy = "year"
)

// FormGroups partitions the pool into groups of roughly groupSize members.
//
// random: shuffle, chunk into consecutive groupSize slices, then fold a
// trailing partial chunk round-robin into the other groups of the batch. A
// partial chunk with no sibling groups stands alone; no group is ever empty.
//
// year: split by year-of-study first (years never mix), then apply the
// random rule within each year.
func FormGroups(pool []model.Participant, groupSize int, strategy Strategy, rng *rand.Rand) ([][]model.Participant, error) {
	if groupSize < 2 {
		return nil, ErrGroupSize
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	switch strategy {
	case StrategyRandom:
		return chunkShuffled(pool, groupSize, rng), nil

	case StrategyYear:
		byYear := map[int][]model.Participant{}
		for _, p := range pool {
			byYear[p.YearOfStudy] = append(byYear[p.YearOfStudy], p)
		}
		years := make([]int, 0, len(byYear))
		for y := range byYear {
			years = append(years, y)
		}
		sort.Ints(years)

		var groups [][]model.Participant
		for _, y := range years {
			groups = append(groups, chunkShuffled(byYear[y], groupSize, rng)...)
		}
		return groups, nil

	default:
		return nil, ErrUnknownStrategy
	}
}

func chunkShuffled(pool []model.Participant, groupSize int, rng *rand.Rand) [][]model.Participant {
	shuffled := make([]model.Participant, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var groups [][]model.Participant
	for start := 0; start < len(shuffled); start += groupSize {
		end := min(start+groupSize, len(shuffled))
		groups = append(groups, shuffled[start:end:end])
	}

	last := groups[len(groups)-1]
	if len(groups) > 1 && len(last) < groupSize {
		groups = groups[:len(groups)-1]
		for i, p := range last {
			gi := i % len(groups)
			groups[gi] = append(groups[gi], p)
		}
	}
	return groups
}
