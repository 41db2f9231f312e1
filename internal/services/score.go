package services

import (
	"sort"
	"strings"

	"github.com/soaringjerry/inform/internal/models"
)

// ScoreResponse grades one quiz response. A question scores its points when
// the answer matches the correct set exactly; text answers ignore case and
// surrounding space. Questions without a correct answer are not graded.
func ScoreResponse(form *models.Form, r *models.Response) models.LeaderboardEntry {
	e := models.LeaderboardEntry{}
	if r == nil {
		return e
	}
	e.ResponseID = r.ID
	if form == nil {
		return e
	}
	for _, q := range form.Questions {
		if q.IsLogicQuestion || len(q.CorrectAnswer) == 0 {
			continue
		}
		pts := q.Points
		if pts <= 0 {
			pts = 1
		}
		e.MaxScore += pts
		v, _ := r.Find(q.Key())
		if answerMatches(q, v) {
			e.TotalScore += pts
		}
	}
	if e.MaxScore > 0 {
		e.Percentage = e.TotalScore / e.MaxScore * 100
	}
	return e
}

func answerMatches(q models.Question, v models.AnswerValue) bool {
	if v.IsEmpty() {
		return false
	}
	if q.Type.IsText() {
		got := strings.TrimSpace(v.String())
		for _, want := range q.CorrectAnswer {
			if strings.EqualFold(got, strings.TrimSpace(want)) {
				return true
			}
		}
		return false
	}
	got := v.Values()
	if len(got) != len(q.CorrectAnswer) {
		return false
	}
	seen := make(map[string]int, len(got))
	for _, s := range got {
		seen[s]++
	}
	for _, s := range q.CorrectAnswer {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}

// ScoreQuiz grades every response and ranks them by percentage, best first.
// Ties keep submission order.
func ScoreQuiz(form *models.Form, responses []*models.Response) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, 0, len(responses))
	for _, r := range responses {
		if r == nil {
			continue
		}
		out = append(out, ScoreResponse(form, r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return out
}
