package adminbot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// defaultVoteReply is used when an option line carries no reply text.
const defaultVoteReply = "Thanks for voting!"

func (b *Bot) handleNewSurvey(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	sess := b.sessions.Get(c.Sender().ID)
	sess.State = StateSurveyQuestion
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Send the survey question.")
}

func (b *Bot) handleSurveyQuestion(c tele.Context, sess *Session) error {
	sess.SurveyBuilder = survey.NewBuilder(strings.TrimSpace(c.Text()))
	sess.State = StateSurveyOptions
	return c.Send(
		"Now send the options, one message each, as:\n`Option text | reply after vote`\nThe reply part is optional. Press Finish when done.",
		surveyMenu)
}

func (b *Bot) handleSurveyOption(c tele.Context, sess *Session) error {
	text, reply := splitOptionLine(c.Text())
	if text == "" {
		return c.Send("Option text cannot be empty. Send:\n`Option text | reply after vote`", surveyMenu)
	}
	sess.SurveyBuilder.AddOption(text, reply)
	return c.Send(fmt.Sprintf("Option added (%d so far). Send more or press Finish.", sess.SurveyBuilder.Count()), surveyMenu)
}

// handleSurveyDone stores the survey, posts the rendered vote message
// into the archive channel and hands the archived locator to the
// broadcast flow as a pre-staged bundle.
func (b *Bot) handleSurveyDone(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	if sess.State != StateSurveyOptions || sess.SurveyBuilder == nil {
		return c.Respond()
	}

	s, err := sess.SurveyBuilder.Build()
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Add a question and at least one option first."})
	}

	ctx, cancel := b.ctx()
	defer cancel()

	if err := b.surveys.Create(ctx, s); err != nil {
		b.log.Error().Str("survey_id", s.SurveyID).Err(err).Msg("survey create failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not save the survey."})
	}

	// One archived copy; fan-out replays it, so undo covers surveys too.
	archived, err := b.bot.Send(tele.ChatID(b.archiveChat), s.Question, voteKeyboard(s))
	if err != nil {
		b.log.Error().Str("survey_id", s.SurveyID).Err(err).Msg("survey archive failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not stage the survey message."})
	}

	sess.Bundle = []storage.MessageRef{{ChatID: b.archiveChat, MessageID: archived.ID}}
	sess.SurveyBuilder = nil
	sess.State = StateIdle

	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Survey saved. Who should receive it?", audienceMenu)
}

// splitOptionLine splits "text | reply" into its parts, defaulting the
// reply when omitted.
func splitOptionLine(line string) (text, reply string) {
	parts := strings.SplitN(line, "|", 2)
	text = strings.TrimSpace(parts[0])
	reply = defaultVoteReply
	if len(parts) == 2 {
		if r := strings.TrimSpace(parts[1]); r != "" {
			reply = r
		}
	}
	return text, reply
}
