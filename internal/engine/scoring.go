package engine

import (
	"sort"

	"github.com/shivam222343/verbafest-backend/internal/model"
)

// ClampScores aligns a raw score vector to the panel's parameter list:
// the result has one entry per parameter, each forced into [0, maxScore].
// Out-of-range input is clamped, not rejected.
func ClampScores(raw []float64, params []model.EvaluationParameter) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		var v float64
		if i < len(raw) {
			v = raw[i]
		}
		if v < 0 {
			v = 0
		}
		if v > p.MaxScore {
			v = p.MaxScore
		}
		out[i] = v
	}
	return out
}

// Totals sums a clamped score vector against the parameter maxima.
func Totals(scores []float64, params []model.EvaluationParameter) (total, maxTotal float64) {
	for _, s := range scores {
		total += s
	}
	for _, p := range params {
		maxTotal += p.MaxScore
	}
	return total, maxTotal
}

// ByJudges filters evaluations to those authored by the given judges.
// A group reassigned to a new panel keeps the old panel's evaluations in
// storage, but they never count toward the new panel's tally or average.
func ByJudges(evals []model.Evaluation, judges []model.Judge) []model.Evaluation {
	onPanel := map[string]bool{}
	for _, j := range judges {
		onPanel[j.ID] = true
	}
	var out []model.Evaluation
	for _, e := range evals {
		if onPanel[e.JudgeID] {
			out = append(out, e)
		}
	}
	return out
}

// SubmittedCount counts non-draft evaluations; drafts never advance a
// group's evaluation status.
func SubmittedCount(evals []model.Evaluation) int {
	n := 0
	for _, e := range evals {
		if !e.IsDraft {
			n++
		}
	}
	return n
}

// GroupStatus derives a group's evaluation status from how many of the
// panel's judges have submitted.
func GroupStatus(submitted, judgeCount int) model.EvaluationStatus {
	switch {
	case judgeCount > 0 && submitted >= judgeCount:
		return model.EvalCompleted
	case submitted > 0:
		return model.EvalInProgress
	default:
		return model.EvalPending
	}
}

// GroupAverage is the mean, over submitted evaluations, of the evaluation's
// score percentage (sum of participant totals over sum of maxima, x100).
func GroupAverage(evals []model.Evaluation) float64 {
	var sum float64
	n := 0
	for _, e := range evals {
		if e.IsDraft {
			continue
		}
		var total, maxTotal float64
		for _, r := range e.Ratings {
			total += r.TotalScore
			maxTotal += r.MaxTotalScore
		}
		if maxTotal == 0 {
			continue
		}
		sum += total / maxTotal * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Nominees returns the participants any judge selected for the next round
// in a non-draft evaluation, deduplicated, in first-seen order.
func Nominees(evals []model.Evaluation) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range evals {
		if e.IsDraft {
			continue
		}
		for _, r := range e.Ratings {
			if r.SelectedForNextRound && !seen[r.ParticipantID] {
				seen[r.ParticipantID] = true
				out = append(out, r.ParticipantID)
			}
		}
	}
	return out
}

// RankGroups orders groups by average score descending. Ties keep creation
// order; there is no secondary key.
func RankGroups(groups []model.Group) []model.Group {
	out := make([]model.Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageScore > out[j].AverageScore
	})
	return out
}
