package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/inform/internal/models"
)

func dashboardForms() []*models.Form {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*models.Form{
		{ID: "1", Title: "Team Lunch", Type: models.FormTypeSurvey, State: models.FormStateLive, IsPublic: true, CreatedAt: base},
		{ID: "2", Title: "Capitals quiz", Type: models.FormTypeQuiz, State: models.FormStateDraft, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "3", Title: "Lunch feedback", Type: models.FormTypeForm, State: models.FormStateClosed, CreatedAt: base.Add(24 * time.Hour)},
		nil,
	}
}

func ids(forms []*models.Form) []string {
	out := []string{}
	for _, f := range forms {
		out = append(out, f.ID)
	}
	return out
}

func TestFilterForms(t *testing.T) {
	cases := []struct {
		name   string
		filter FormFilter
		want   []string
	}{
		{"all newest first", FormFilter{}, []string{"2", "3", "1"}},
		{"search", FormFilter{Search: "LUNCH"}, []string{"3", "1"}},
		{"status", FormFilter{Status: []string{"Live", "Draft"}}, []string{"2", "1"}},
		{"type", FormFilter{Types: []models.FormType{models.FormTypeQuiz}}, []string{"2"}},
		{"privacy", FormFilter{Privacy: []string{"Private"}}, []string{"2", "3"}},
		{"combined", FormFilter{Search: "lunch", Privacy: []string{"Public"}}, []string{"1"}},
	}
	for _, tc := range cases {
		got := ids(FilterForms(dashboardForms(), tc.filter))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestPaginateClamps(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	p := Paginate(items, 2, 0)
	if diff := cmp.Diff(Page[int]{Items: []int{6, 7}, Page: 2, TotalPages: 2, Total: 7}, p); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := Paginate(items, 10, 5); got.Page != 2 {
		t.Fatalf("page not clamped: %d", got.Page)
	}
	if got := Paginate([]int{}, 3, 5); got.Page != 1 || got.TotalPages != 1 || len(got.Items) != 0 {
		t.Fatalf("empty pagination = %+v", got)
	}
}

func TestPageLeaderboard(t *testing.T) {
	var entries []models.LeaderboardEntry
	for i := 0; i < 12; i++ {
		entries = append(entries, models.LeaderboardEntry{ResponseID: fmt.Sprint(i), UserToken: fmt.Sprintf("t%d", i)})
	}
	p := PageLeaderboard(entries, 2, "t11")
	if p.TotalPages != 2 || len(p.Items) != 2 {
		t.Fatalf("unexpected page %+v", p)
	}
	if p.Items[0].Rank != 11 || p.Items[0].IsCurrentUser || !p.Items[1].IsCurrentUser {
		t.Fatalf("unexpected rows %+v", p.Items)
	}
	for _, row := range PageLeaderboard(entries, 1, "").Items {
		if row.IsCurrentUser {
			t.Fatalf("empty token must not match")
		}
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName(models.LeaderboardEntry{}) != "Anonymous" || DisplayName(models.LeaderboardEntry{Name: "Bo"}) != "Bo" {
		t.Fatalf("unexpected display names")
	}
}

func TestShareLinkAndEmail(t *testing.T) {
	if got := ShareLink("https://inform.app/", "xyz"); got != "https://inform.app/fill/xyz" {
		t.Fatalf("ShareLink = %q", got)
	}
	for email, want := range map[string]bool{
		"a@b.co":      true,
		"a b@c.de":    false,
		"missing.at":  false,
		"no@tld":      false,
		"x@y.z@w.com": false,
	} {
		if got := IsValidEmail(email); got != want {
			t.Fatalf("IsValidEmail(%q) = %v", email, got)
		}
	}

	form := &models.Form{Type: models.FormTypeQuiz, Title: "T", Description: "D", ShareID: "s1"}
	msg, err := NewShareEmail(" a@b.co ", form, "http://localhost:5173")
	if err != nil {
		t.Fatalf("NewShareEmail: %v", err)
	}
	if msg.URL != "http://localhost:5173/fill/s1" || msg.Email != "a@b.co" {
		t.Fatalf("unexpected payload %+v", msg)
	}
	if _, err := NewShareEmail("bad", form, ""); err == nil {
		t.Fatalf("expected invalid email error")
	}
}
