// Package survey implements operator-built surveys: a question with
// inline options, vote recording, and tally computation. Fan-out of a
// survey rides the broadcast engine: the rendered survey message is
// archived once and replayed by reference, so batch undo applies to
// surveys the same as to plain broadcasts.
package survey

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// Validation errors surfaced to the operator during survey construction.
var (
	ErrNoOptions  = errors.New("survey: no options added")
	ErrNoQuestion = errors.New("survey: question text is empty")
)

// callbackPrefix tags vote callbacks so the content bot can route them.
const callbackPrefix = "surv"

// Builder accumulates a survey definition across wizard steps. Scoped to
// one operator session, not safe for concurrent use.
type Builder struct {
	question string
	options  []storage.SurveyOption
}

// NewBuilder creates a Builder with the given question text.
func NewBuilder(question string) *Builder {
	return &Builder{question: question}
}

// AddOption appends one option with its post-vote reply text and returns
// the generated option id.
func (b *Builder) AddOption(text, reply string) string {
	// Short ids keep callback data under Telegram's 64-byte limit.
	id := uuid.New().String()[:8]
	b.options = append(b.options, storage.SurveyOption{
		OptionID: id,
		Text:     text,
		Reply:    reply,
	})
	return id
}

// Count returns the number of options added so far.
func (b *Builder) Count() int { return len(b.options) }

// Build finalizes the survey with a fresh survey id.
func (b *Builder) Build() (*storage.Survey, error) {
	if strings.TrimSpace(b.question) == "" {
		return nil, ErrNoQuestion
	}
	if len(b.options) == 0 {
		return nil, ErrNoOptions
	}
	return &storage.Survey{
		SurveyID:  uuid.New().String(),
		Question:  b.question,
		Options:   b.options,
		CreatedAt: time.Now(),
	}, nil
}

// VoteCallback renders the callback data for one option button.
func VoteCallback(surveyID, optionID string) string {
	return fmt.Sprintf("%s:%s:%s", callbackPrefix, surveyID, optionID)
}

// ParseVoteCallback splits callback data produced by VoteCallback.
// ok is false for any other callback payload.
func ParseVoteCallback(data string) (surveyID, optionID string, ok bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) != 3 || parts[0] != callbackPrefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// OptionTally is the vote count for one option.
type OptionTally struct {
	OptionID string
	Text     string
	Count    int
	Percent  float64
}

// Tally counts votes per option. Votes referencing an option that no
// longer exists are ignored. Percentages are of the total recorded
// votes, including ignored ones, matching the stored vote map size.
func Tally(s *storage.Survey) (total int, tallies []OptionTally) {
	total = len(s.Votes)

	counts := make(map[string]int, len(s.Options))
	for _, opt := range s.Options {
		counts[opt.OptionID] = 0
	}
	for _, optionID := range s.Votes {
		if _, ok := counts[optionID]; ok {
			counts[optionID]++
		}
	}

	for _, opt := range s.Options {
		n := counts[opt.OptionID]
		var pct float64
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		tallies = append(tallies, OptionTally{
			OptionID: opt.OptionID,
			Text:     opt.Text,
			Count:    n,
			Percent:  pct,
		})
	}
	return total, tallies
}

// OptionText returns the display text for an option id, or a fallback
// when the option was removed after votes were cast.
func OptionText(s *storage.Survey, optionID string) string {
	for _, opt := range s.Options {
		if opt.OptionID == optionID {
			return opt.Text
		}
	}
	return "Unknown Option"
}

// ReplyFor returns the post-vote reply configured for an option id.
func ReplyFor(s *storage.Survey, optionID string) (string, bool) {
	for _, opt := range s.Options {
		if opt.OptionID == optionID {
			return opt.Reply, true
		}
	}
	return "", false
}
