package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/models"
)

// TextPageSize is the fixed page size for listing raw text answers.
const TextPageSize = 10

type SummaryKind string

const (
	SummaryChoice      SummaryKind = "choice"
	SummaryText        SummaryKind = "text"
	SummaryRating      SummaryKind = "rating"
	SummaryDate        SummaryKind = "date"
	SummaryLogic       SummaryKind = "logic"
	SummaryUnsupported SummaryKind = "unsupported"
)

// QuestionSummary is a tagged union: Kind tells which of the pointer fields is set.
// Unsupported summaries carry no payload.
type QuestionSummary struct {
	QuestionID   string              `json:"questionId"`
	QuestionText string              `json:"questionText"`
	Type         models.QuestionType `json:"type"`
	Kind         SummaryKind         `json:"kind"`
	Answered     int                 `json:"answered"`

	Choice *ChoiceSummary `json:"choice,omitempty"`
	Text   *TextSummary   `json:"text,omitempty"`
	Rating *RatingSummary `json:"rating,omitempty"`
	Date   *DateSummary   `json:"date,omitempty"`
	Logic  *LogicSummary  `json:"logic,omitempty"`
}

type ChoiceCount struct {
	Name  string  `json:"name"`
	Value int     `json:"value"`
	Pct   float64 `json:"pct"`
}

type ChoiceSummary struct {
	Total  int           `json:"total"`
	Counts []ChoiceCount `json:"counts"`
}

type TextSummary struct {
	Count   int      `json:"count"`
	Unique  int      `json:"unique"`
	AvgLen  float64  `json:"avgLength"`
	Answers []string `json:"answers"`
}

type TextPage struct {
	Items      []string `json:"items"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
}

type RatingBucket struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type RatingSummary struct {
	Count        int            `json:"count"`
	Mean         float64        `json:"mean"`
	Median       float64        `json:"median"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Distribution []RatingBucket `json:"distribution"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DateSummary struct {
	Count int         `json:"count"`
	Days  []DateCount `json:"days"`
}

type LogicSummary struct {
	Yes    int     `json:"yes"`
	No     int     `json:"no"`
	YesPct float64 `json:"yesPct"`
	NoPct  float64 `json:"noPct"`
}

type FormSummary struct {
	FormID         string            `json:"formId,omitempty"`
	Title          string            `json:"title"`
	Type           models.FormType   `json:"type"`
	TotalResponses int               `json:"totalResponses"`
	Questions      []QuestionSummary `json:"questions"`
}

// AnswersForQuestion returns the non-empty answers recorded for questionID,
// one per response, in response order.
func AnswersForQuestion(responses []*models.Response, questionID string) []models.AnswerValue {
	var out []models.AnswerValue
	for _, r := range responses {
		if r == nil {
			continue
		}
		v, ok := r.Find(questionID)
		if !ok || v.IsEmpty() {
			continue
		}
		out = append(out, v)
	}
	return out
}

// flatten expands list answers and drops blank elements.
func flatten(values []models.AnswerValue) []string {
	var out []string
	for _, v := range values {
		for _, s := range v.Values() {
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// SummarizeChoice tallies answers in first-seen order, then appends declared
// choices nobody picked. The result is stably sorted by count, highest first.
func SummarizeChoice(values []models.AnswerValue, choices []string) ChoiceSummary {
	flat := flatten(values)
	index := map[string]int{}
	var counts []ChoiceCount
	for _, v := range flat {
		if i, ok := index[v]; ok {
			counts[i].Value++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, ChoiceCount{Name: v, Value: 1})
	}
	for _, c := range choices {
		if _, ok := index[c]; ok {
			continue
		}
		index[c] = len(counts)
		counts = append(counts, ChoiceCount{Name: c})
	}
	total := len(flat)
	denom := total
	if denom == 0 {
		denom = 1
	}
	for i := range counts {
		counts[i].Pct = round1(float64(counts[i].Value) / float64(denom) * 100)
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Value > counts[j].Value })
	if counts == nil {
		counts = []ChoiceCount{}
	}
	return ChoiceSummary{Total: total, Counts: counts}
}

func SummarizeText(values []models.AnswerValue) TextSummary {
	flat := flatten(values)
	seen := map[string]struct{}{}
	runes := 0
	for _, v := range flat {
		seen[v] = struct{}{}
		runes += utf8.RuneCountInString(v)
	}
	s := TextSummary{Count: len(flat), Unique: len(seen), Answers: flat}
	if s.Answers == nil {
		s.Answers = []string{}
	}
	if s.Count > 0 {
		s.AvgLen = round1(float64(runes) / float64(s.Count))
	}
	return s
}

// TotalPages is never below 1.
func (s TextSummary) TotalPages() int {
	if len(s.Answers) == 0 {
		return 1
	}
	return (len(s.Answers) + TextPageSize - 1) / TextPageSize
}

// Page returns the 1-based page n of raw answers, clamped to the valid range.
func (s TextSummary) Page(n int) TextPage {
	total := s.TotalPages()
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	start := (n - 1) * TextPageSize
	end := start + TextPageSize
	if end > len(s.Answers) {
		end = len(s.Answers)
	}
	items := []string{}
	if start < end {
		items = append(items, s.Answers[start:end]...)
	}
	return TextPage{Items: items, Page: n, TotalPages: total}
}

func SummarizeRating(values []models.AnswerValue) RatingSummary {
	var nums []float64
	for _, v := range flatten(values) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		nums = append(nums, f)
	}
	s := RatingSummary{Count: len(nums), Distribution: []RatingBucket{}}
	if len(nums) == 0 {
		return s
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, f := range sorted {
		sum += f
	}
	s.Mean = sum / float64(len(sorted))
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}
	for _, f := range sorted {
		if n := len(s.Distribution); n > 0 && s.Distribution[n-1].Value == f {
			s.Distribution[n-1].Count++
			continue
		}
		s.Distribution = append(s.Distribution, RatingBucket{Value: f, Count: 1})
	}
	return s
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseAnswerDate accepts RFC 3339 timestamps, local date-times without a zone
// and plain dates. Values without a zone are read as UTC.
func ParseAnswerDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SummarizeDate buckets parseable dates by UTC calendar day, oldest first.
func SummarizeDate(values []models.AnswerValue) DateSummary {
	byDay := map[string]int{}
	count := 0
	for _, v := range flatten(values) {
		t, ok := ParseAnswerDate(v)
		if !ok {
			continue
		}
		byDay[t.UTC().Format("2006-01-02")]++
		count++
	}
	days := make([]DateCount, 0, len(byDay))
	for d, c := range byDay {
		days = append(days, DateCount{Date: d, Count: c})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return DateSummary{Count: count, Days: days}
}

func SummarizeLogic(values []models.AnswerValue) LogicSummary {
	var s LogicSummary
	for _, v := range values {
		switch v.String() {
		case "Yes":
			s.Yes++
		case "No":
			s.No++
		}
	}
	denom := s.Yes + s.No
	if denom == 0 {
		denom = 1
	}
	s.YesPct = round1(float64(s.Yes) / float64(denom) * 100)
	s.NoPct = round1(float64(s.No) / float64(denom) * 100)
	return s
}

// SummarizeQuestion picks the summary shape for q. The logic flag wins over
// the declared type; unknown types produce an unsupported summary.
func SummarizeQuestion(q models.Question, responses []*models.Response) QuestionSummary {
	values := AnswersForQuestion(responses, q.Key())
	out := QuestionSummary{
		QuestionID:   q.Key(),
		QuestionText: q.QuestionText,
		Type:         q.Type,
		Answered:     len(values),
	}
	kind := q.Type
	if q.IsLogicQuestion {
		kind = models.QuestionYesNo
	}
	switch kind {
	case models.QuestionSingleChoice, models.QuestionMultiChoice:
		s := SummarizeChoice(values, q.Choices)
		out.Kind, out.Choice = SummaryChoice, &s
	case models.QuestionShortText, models.QuestionLongText:
		s := SummarizeText(values)
		out.Kind, out.Text = SummaryText, &s
	case models.QuestionRating:
		s := SummarizeRating(values)
		out.Kind, out.Rating = SummaryRating, &s
	case models.QuestionDate:
		s := SummarizeDate(values)
		out.Kind, out.Date = SummaryDate, &s
	case models.QuestionYesNo:
		s := SummarizeLogic(values)
		out.Kind, out.Logic = SummaryLogic, &s
	default:
		out.Kind = SummaryUnsupported
	}
	return out
}

// SummarizeForm summarizes the logic question first, then every other question
// in form order. Malformed responses are skipped and logged at debug level.
func SummarizeForm(form *models.Form, responses []*models.Response) FormSummary {
	if form == nil {
		form = &models.Form{}
	}
	out := FormSummary{FormID: form.ID, Title: form.Title, Type: form.Type, Questions: []QuestionSummary{}}

	valid := make([]*models.Response, 0, len(responses))
	for i, r := range responses {
		if r == nil || r.Answers == nil {
			config.Logger().WithField("form_id", form.ID).WithField("index", i).Debug("skipping malformed response")
			continue
		}
		for _, a := range r.Answers {
			if a.Answer.Kind() == models.AnswerMalformed {
				config.Logger().WithField("form_id", form.ID).WithField("response_id", r.ID).
					WithField("question_id", a.QuestionID).Debug("ignoring malformed answer")
			}
		}
		valid = append(valid, r)
	}
	out.TotalResponses = len(valid)

	if lq := form.LogicQuestion(); lq != nil {
		out.Questions = append(out.Questions, SummarizeQuestion(*lq, valid))
	}
	for _, q := range form.Questions {
		if q.IsLogicQuestion {
			continue
		}
		out.Questions = append(out.Questions, SummarizeQuestion(q, valid))
	}
	return out
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
