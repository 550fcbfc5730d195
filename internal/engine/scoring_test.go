package engine

import (
	"testing"

	"github.com/shivam222343/verbafest-backend/internal/model"
)

func params(maxes ...float64) []model.EvaluationParameter {
	out := make([]model.EvaluationParameter, len(maxes))
	for i, m := range maxes {
		out[i] = model.EvaluationParameter{MaxScore: m, Position: i}
	}
	return out
}

func TestClampScores(t *testing.T) {
	cases := []struct {
		name string
		raw  []float64
		max  []float64
		want []float64
	}{
		{name: "in range untouched", raw: []float64{3, 7}, max: []float64{10, 10}, want: []float64{3, 7}},
		{name: "above max clamped", raw: []float64{15, 7}, max: []float64{10, 10}, want: []float64{10, 7}},
		{name: "negative clamped to zero", raw: []float64{-2, 7}, max: []float64{10, 10}, want: []float64{0, 7}},
		{name: "short vector padded", raw: []float64{4}, max: []float64{10, 10}, want: []float64{4, 0}},
		{name: "long vector truncated", raw: []float64{4, 5, 6}, max: []float64{10, 10}, want: []float64{4, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampScores(tc.raw, params(tc.max...))
			if len(got) != len(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("want %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestTotals(t *testing.T) {
	total, maxTotal := Totals([]float64{4, 7}, params(10, 10))
	if total != 11 || maxTotal != 20 {
		t.Fatalf("want 11/20, got %v/%v", total, maxTotal)
	}
}

func TestGroupStatus(t *testing.T) {
	cases := []struct {
		submitted, judges int
		want              model.EvaluationStatus
	}{
		{0, 3, model.EvalPending},
		{1, 3, model.EvalInProgress},
		{2, 3, model.EvalInProgress},
		{3, 3, model.EvalCompleted},
		{0, 0, model.EvalPending},
	}
	for _, tc := range cases {
		if got := GroupStatus(tc.submitted, tc.judges); got != tc.want {
			t.Fatalf("submitted=%d judges=%d: want %s, got %s", tc.submitted, tc.judges, tc.want, got)
		}
	}
}

func eval(draft bool, ratings ...model.ParticipantRating) model.Evaluation {
	return model.Evaluation{IsDraft: draft, Ratings: ratings}
}

func rating(pid string, total, max float64, selected bool) model.ParticipantRating {
	return model.ParticipantRating{ParticipantID: pid, TotalScore: total, MaxTotalScore: max, SelectedForNextRound: selected}
}

func TestGroupAverage_IgnoresDrafts(t *testing.T) {
	evals := []model.Evaluation{
		eval(false, rating("p1", 8, 10, false), rating("p2", 6, 10, false)), // 70%
		eval(false, rating("p1", 10, 10, false), rating("p2", 8, 10, false)), // 90%
		eval(true, rating("p1", 1, 10, false), rating("p2", 1, 10, false)),  // draft, ignored
	}
	if got := GroupAverage(evals); got != 80 {
		t.Fatalf("want 80, got %v", got)
	}
}

func TestGroupAverage_NoSubmissions(t *testing.T) {
	if got := GroupAverage(nil); got != 0 {
		t.Fatalf("want 0, got %v", got)
	}
	if got := GroupAverage([]model.Evaluation{eval(true, rating("p1", 5, 10, false))}); got != 0 {
		t.Fatalf("want 0 with only drafts, got %v", got)
	}
}

func TestByJudges_DropsForeignEvaluations(t *testing.T) {
	judges := []model.Judge{{ID: "j1"}, {ID: "j2"}}
	evals := []model.Evaluation{
		{ID: "e1", JudgeID: "j1"},
		{ID: "e2", JudgeID: "former-panel"},
		{ID: "e3", JudgeID: "j2"},
	}

	got := ByJudges(evals, judges)
	if len(got) != 2 {
		t.Fatalf("want 2 evaluations, got %d", len(got))
	}
	if got[0].ID != "e1" || got[1].ID != "e3" {
		t.Fatalf("want [e1 e3], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestNominees(t *testing.T) {
	evals := []model.Evaluation{
		eval(false, rating("p1", 8, 10, true), rating("p2", 6, 10, false)),
		eval(false, rating("p1", 9, 10, true), rating("p3", 7, 10, true)),
		eval(true, rating("p4", 9, 10, true)), // draft nomination never counts
	}
	got := Nominees(evals)
	want := []string{"p1", "p3"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

func TestRankGroups_TiesKeepCreationOrder(t *testing.T) {
	groups := []model.Group{
		{ID: "g1", AverageScore: 70},
		{ID: "g2", AverageScore: 85},
		{ID: "g3", AverageScore: 70},
	}
	ranked := RankGroups(groups)
	wantOrder := []string{"g2", "g1", "g3"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, ranked[i].ID)
		}
	}
	// input untouched
	if groups[0].ID != "g1" {
		t.Fatalf("RankGroups mutated its input")
	}
}
