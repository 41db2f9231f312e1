package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soaringjerry/inform/internal/models"
	"github.com/soaringjerry/inform/internal/services"
	"github.com/soaringjerry/inform/internal/utils"
)

const barWidth = 20

func bar(pct float64) string {
	n := int(pct/100*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("#", n) + strings.Repeat(".", barWidth-n)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// renderSummary prints a form summary. textPage selects which page of free
// text answers is listed.
func renderSummary(w io.Writer, lang string, s services.FormSummary, textPage int) {
	fmt.Fprintf(w, "%s (%s)\n", s.Title, s.Type.Label())
	fmt.Fprintln(w, utils.Tf(lang, "summary.total", humanize.Comma(int64(s.TotalResponses))))
	for i, q := range s.Questions {
		fmt.Fprintf(w, "\n%d. %s [%s]\n", i+1, q.QuestionText, q.Type.Label())
		switch q.Kind {
		case services.SummaryChoice:
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, c := range q.Choice.Counts {
				fmt.Fprintf(tw, "   %s\t%s\t%d\t%s%%\n", c.Name, bar(c.Pct), c.Value, num(c.Pct))
			}
			tw.Flush()
		case services.SummaryText:
			t := q.Text
			fmt.Fprintf(w, "   %d answers, %d unique, avg length %s\n", t.Count, t.Unique, num(t.AvgLen))
			page := t.Page(textPage)
			for _, a := range page.Items {
				fmt.Fprintf(w, "   - %s\n", a)
			}
			if page.TotalPages > 1 {
				fmt.Fprintf(w, "   (page %d/%d)\n", page.Page, page.TotalPages)
			}
		case services.SummaryRating:
			r := q.Rating
			fmt.Fprintf(w, "   mean %s  median %s  min %s  max %s\n", num(r.Mean), num(r.Median), num(r.Min), num(r.Max))
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, b := range r.Distribution {
				fmt.Fprintf(tw, "   %s\t%d\n", num(b.Value), b.Count)
			}
			tw.Flush()
		case services.SummaryDate:
			for _, d := range q.Date.Days {
				fmt.Fprintf(w, "   %s  %d\n", d.Date, d.Count)
			}
		case services.SummaryLogic:
			l := q.Logic
			fmt.Fprintf(w, "   Yes  %s  %d  %s%%\n", bar(l.YesPct), l.Yes, num(l.YesPct))
			fmt.Fprintf(w, "   No   %s  %d  %s%%\n", bar(l.NoPct), l.No, num(l.NoPct))
		default:
			fmt.Fprintln(w, "   (no summary for this question type)")
		}
	}
}

func renderForms(w io.Writer, lang, shareBase string, page services.Page[*models.Form], now time.Time) {
	if page.Total == 0 {
		fmt.Fprintln(w, utils.T(lang, "forms.none"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSTATE\tRESPONSES\tCREATED\tLINK")
	for _, f := range page.Items {
		created := "-"
		if !f.CreatedAt.IsZero() {
			created = humanize.RelTime(f.CreatedAt, now, "ago", "from now")
		}
		link := "-"
		if f.ShareID != "" {
			link = services.ShareLink(shareBase, f.ShareID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Title, f.Type.Label(), f.State.Label(),
			humanize.Comma(int64(f.ResponseCount)), created, link)
	}
	tw.Flush()
	fmt.Fprintln(w, utils.Tf(lang, "forms.page", page.Page, page.TotalPages, humanize.Comma(int64(page.Total))))
}

func renderLeaderboard(w io.Writer, lang string, page services.Page[services.RankedEntry]) {
	if page.Total == 0 {
		fmt.Fprintln(w, utils.T(lang, "leaderboard.none"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tSCORE\tPERCENT")
	for _, e := range page.Items {
		name := services.DisplayName(e.LeaderboardEntry)
		if e.IsCurrentUser {
			name += " (you)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s%%\n", humanize.Ordinal(e.Rank), name,
			num(e.TotalScore), num(e.MaxScore), num(roundPct(e.Percentage)))
	}
	tw.Flush()
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "page %d/%d\n", page.Page, page.TotalPages)
	}
}

func roundPct(p float64) float64 {
	return float64(int64(p*10+0.5)) / 10
}
