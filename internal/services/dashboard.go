package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/soaringjerry/inform/internal/models"
)

const (
	DashboardPageSize   = 5
	LeaderboardPageSize = 10
)

// FormFilter narrows a form listing. Empty slices match everything.
// Status values use FormState labels ("Live"); privacy values are "Public" or "Private".
type FormFilter struct {
	Search  string
	Status  []string
	Types   []models.FormType
	Privacy []string
}

// FilterForms returns the matching forms, newest first.
func FilterForms(forms []*models.Form, f FormFilter) []*models.Form {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*models.Form, 0, len(forms))
	for _, form := range forms {
		if form == nil {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(form.Title), query) {
			continue
		}
		if len(f.Status) > 0 && !containsFold(f.Status, form.State.Label()) {
			continue
		}
		if len(f.Types) > 0 && !containsType(f.Types, form.Type) {
			continue
		}
		if len(f.Privacy) > 0 && !containsFold(f.Privacy, privacyLabel(form)) {
			continue
		}
		out = append(out, form)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func privacyLabel(f *models.Form) string {
	if f.IsPublic {
		return "Public"
	}
	return "Private"
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func containsType(values []models.FormType, t models.FormType) bool {
	for _, v := range values {
		if v == t {
			return true
		}
	}
	return false
}

// Page is one slice of a paginated listing. Pages are 1-based and TotalPages
// is never below 1.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	Total      int
}

// Paginate clamps page into range and returns that page of items.
// perPage <= 0 falls back to DashboardPageSize.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DashboardPageSize
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	out := make([]T, 0, end-start)
	if start < end {
		out = append(out, items[start:end]...)
	}
	return Page[T]{Items: out, Page: page, TotalPages: pages, Total: total}
}

// RankedEntry is a leaderboard row with its overall rank and whether it
// belongs to the viewer.
type RankedEntry struct {
	models.LeaderboardEntry
	Rank          int
	IsCurrentUser bool
}

// PageLeaderboard returns one page of the leaderboard. Rows whose user token
// equals userToken are marked; an empty token marks nothing.
func PageLeaderboard(entries []models.LeaderboardEntry, page int, userToken string) Page[RankedEntry] {
	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = RankedEntry{
			LeaderboardEntry: e,
			Rank:             i + 1,
			IsCurrentUser:    userToken != "" && e.UserToken == userToken,
		}
	}
	return Paginate(ranked, page, LeaderboardPageSize)
}

// DisplayName is the leaderboard name, or "Anonymous" when none was given.
func DisplayName(e models.LeaderboardEntry) string {
	if strings.TrimSpace(e.Name) == "" {
		return "Anonymous"
	}
	return e.Name
}

// ShareLink builds the public fill URL for a form.
func ShareLink(baseURL, shareID string) string {
	return strings.TrimRight(baseURL, "/") + "/fill/" + shareID
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool { return emailPattern.MatchString(email) }

// ShareEmail is the payload for mailing a share link.
type ShareEmail struct {
	Email       string          `json:"email"`
	FormType    models.FormType `json:"formType"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
}

// NewShareEmail checks the address and fills the payload from form.
func NewShareEmail(email string, form *models.Form, baseURL string) (ShareEmail, error) {
	email = strings.TrimSpace(email)
	if !IsValidEmail(email) {
		return ShareEmail{}, NewInvalidError("Please enter a valid email address.")
	}
	if form == nil || form.ShareID == "" {
		return ShareEmail{}, NewInvalidError("Save the form before sharing it.")
	}
	return ShareEmail{
		Email:       email,
		FormType:    form.Type,
		Title:       form.Title,
		Description: form.Description,
		URL:         ShareLink(baseURL, form.ShareID),
	}, nil
}
