package services

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/inform/internal/models"
)

// ExportTimeLayout renders submission timestamps in CSV cells.
const ExportTimeLayout = "2006-01-02 15:04:05"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename derives the download name from the form title,
// e.g. "Team Lunch" -> "team-lunch-responses.csv".
func ExportFilename(form *models.Form) string {
	title := ""
	if form != nil {
		title = form.Title
	}
	return strings.ToLower(whitespaceRun.ReplaceAllString(title, "-") + "-responses.csv")
}

// ExportResponsesCSV renders one row per response. Quizzes get name and score
// columns from the leaderboard; other forms get one column per question.
// Timestamps are shown in loc, or UTC when loc is nil.
func ExportResponsesCSV(form *models.Form, responses []*models.Response, leaderboard []models.LeaderboardEntry, loc *time.Location) ([]byte, error) {
	if form == nil {
		form = &models.Form{}
	}
	if loc == nil {
		loc = time.UTC
	}
	quiz := form.Type == models.FormTypeQuiz

	header := []string{"Response #", "Submitted At"}
	if quiz {
		header = append(header, "Name", "Score")
	} else {
		for _, q := range form.Questions {
			header = append(header, q.QuestionText)
		}
	}

	byResponse := make(map[string]models.LeaderboardEntry, len(leaderboard))
	for _, e := range leaderboard {
		byResponse[e.ResponseID] = e
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	n := 0
	for _, r := range responses {
		if r == nil {
			continue
		}
		n++
		row := []string{strconv.Itoa(n), formatSubmitted(r.SubmittedAt, loc)}
		if quiz {
			row = append(row, quizCells(byResponse, r.ID)...)
		} else {
			for _, q := range form.Questions {
				v, _ := r.Find(q.Key())
				row = append(row, v.String())
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func quizCells(byResponse map[string]models.LeaderboardEntry, responseID string) []string {
	e, ok := byResponse[responseID]
	if !ok || responseID == "" {
		return []string{"", ""}
	}
	name := e.Name
	if strings.TrimSpace(name) == "" {
		name = "Anonymous"
	}
	return []string{name, formatScore(e.TotalScore)}
}

func formatSubmitted(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(ExportTimeLayout)
}

func formatScore(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
