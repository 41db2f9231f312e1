package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/inform/internal/models"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func TestExportResponsesCSVForm(t *testing.T) {
	form := &models.Form{
		Type:  models.FormTypeSurvey,
		Title: "Team Lunch",
		Questions: []models.Question{
			{ID: "q1", QuestionText: "Name", Type: models.QuestionShortText},
			{ID: "q2", QuestionText: "Food, drinks", Type: models.QuestionMultiChoice},
			{ID: "q3", QuestionText: "Notes", Type: models.QuestionLongText},
		},
	}
	at := time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)
	responses := []*models.Response{
		{ID: "r1", SubmittedAt: at, Answers: []models.Answer{
			{QuestionID: "q2", Answer: models.List("Pizza", "Soda")},
			{QuestionID: "q1", Answer: models.Scalar(`Ann "the cat"`)},
		}},
		nil,
		{ID: "r2", SubmittedAt: at.Add(time.Hour), Answers: []models.Answer{
			{QuestionID: "q3", Answer: models.Scalar("line1\nline2")},
		}},
	}
	b, err := ExportResponsesCSV(form, responses, nil, time.UTC)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		{"Response #", "Submitted At", "Name", "Food, drinks", "Notes"},
		{"1", "2025-05-01 12:30:00", `Ann "the cat"`, "Pizza, Soda", ""},
		{"2", "2025-05-01 13:30:00", "", "", "line1\nline2"},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestExportResponsesCSVQuiz(t *testing.T) {
	form := &models.Form{Type: models.FormTypeQuiz, Title: "Capitals"}
	at := time.Date(2025, 5, 1, 22, 0, 0, 0, time.UTC)
	responses := []*models.Response{
		{ID: "r1", SubmittedAt: at},
		{ID: "r2", SubmittedAt: at},
		{ID: "r3", SubmittedAt: at},
	}
	leaderboard := []models.LeaderboardEntry{
		{ResponseID: "r1", Name: "Ann", TotalScore: 3, MaxScore: 4},
		{ResponseID: "r2", TotalScore: 1.5, MaxScore: 4},
	}
	tokyo := time.FixedZone("JST", 9*3600)
	b, err := ExportResponsesCSV(form, responses, leaderboard, tokyo)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		{"Response #", "Submitted At", "Name", "Score"},
		{"1", "2025-05-02 07:00:00", "Ann", "3"},
		{"2", "2025-05-02 07:00:00", "Anonymous", "1.5"},
		{"3", "2025-05-02 07:00:00", "", ""},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestExportResponsesCSVHeaderOnly(t *testing.T) {
	b, err := ExportResponsesCSV(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := strings.TrimSpace(string(b)); got != "Response #,Submitted At" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	cases := map[string]string{
		"Team Lunch":        "team-lunch-responses.csv",
		"  Q3   Survey\tX ": "-q3-survey-x--responses.csv",
		"":                  "-responses.csv",
	}
	for title, want := range cases {
		if got := ExportFilename(&models.Form{Title: title}); got != want {
			t.Fatalf("ExportFilename(%q) = %q, want %q", title, got, want)
		}
	}
}
