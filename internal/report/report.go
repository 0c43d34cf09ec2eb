// Package report builds the periodic operator reports: overall user
// stats with a history breakdown, and per-survey tallies with a
// per-voter CSV export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// maxMessageLen guards against Telegram's 4096-char message limit.
const maxMessageLen = 4000

// StatsText renders the user stats report: total registered users plus
// the history breakdown with percentages.
func StatsText(total int64, rows []storage.HistoryCount, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Bot stats report\n")
	fmt.Fprintf(&b, "📅 %s\n", now.Format("2006-01-02 | 15:04"))
	fmt.Fprintf(&b, "👥 Total users: %d\n", total)
	b.WriteString("──────────────────\n")

	if len(rows) == 0 {
		b.WriteString("No history recorded yet.")
		return b.String()
	}

	for _, row := range rows {
		var pct float64
		if total > 0 {
			pct = float64(row.Count) / float64(total) * 100
		}
		fmt.Fprintf(&b, "🔹 %s: %d (%.1f%%)\n", row.Value, row.Count, pct)
	}
	return Truncate(b.String())
}

// SurveysText renders the survey status report: one block per survey
// with the total and per-option tallies.
func SurveysText(surveys []storage.Survey, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Survey status report\n")
	fmt.Fprintf(&b, "📅 %s\n\n", now.Format("2006-01-02 15:04"))

	for i := range surveys {
		s := &surveys[i]
		total, tallies := survey.Tally(s)

		fmt.Fprintf(&b, "📌 %s\n", shorten(s.Question, 50))
		fmt.Fprintf(&b, "👥 Total votes: %d\n", total)
		for _, tl := range tallies {
			fmt.Fprintf(&b, " ▫️ %s: %d (%.1f%%)\n", tl.Text, tl.Count, tl.Percent)
		}
		b.WriteString("──────────────────\n")
	}
	return Truncate(b.String())
}

// Truncate cuts the text at the Telegram message limit with a marker.
func Truncate(text string) string {
	if len(text) <= maxMessageLen {
		return text
	}
	return text[:maxMessageLen] + "\n\n⚠️ truncated"
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ".."
}
