package adminbot

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// Static inline menus. Buttons double as callback routes; handlers are
// registered against them in register().
var (
	mainMenu         = &tele.ReplyMarkup{}
	btnNewBroadcast  = mainMenu.Data("📣 New broadcast", "bcast_new")
	btnNewSurvey     = mainMenu.Data("🗳 New survey", "surv_new")
	btnNewCast       = mainMenu.Data("🎬 Add cast", "cast_new")
	btnDelCast       = mainMenu.Data("🗑 Remove cast", "cast_del")
	btnRecentBatches = mainMenu.Data("📦 Recent batches", "batches")
	btnStats         = mainMenu.Data("📊 Stats", "stats")

	audienceMenu = &tele.ReplyMarkup{}
	btnAudAll    = audienceMenu.Data("Everyone", "aud_all")
	btnAudCohort = audienceMenu.Data("Test cohort", "aud_cohort")
	btnAudRange  = audienceMenu.Data("Registration window", "aud_range")
	btnAudManual = audienceMenu.Data("Manual id list", "aud_manual")
	btnAudCancel = audienceMenu.Data("✖️ Cancel", "aud_cancel")

	collectMenu      = &tele.ReplyMarkup{}
	btnCollectDone   = collectMenu.Data("✅ Done", "collect_done")
	btnCollectCancel = collectMenu.Data("✖️ Cancel", "collect_cancel")

	confirmMenu      = &tele.ReplyMarkup{}
	btnConfirmSend   = confirmMenu.Data("🚀 Send", "confirm_send")
	btnConfirmCancel = confirmMenu.Data("✖️ Cancel", "confirm_cancel")

	surveyMenu      = &tele.ReplyMarkup{}
	btnSurveyDone   = surveyMenu.Data("✅ Finish survey", "survey_done")
	btnSurveyCancel = surveyMenu.Data("✖️ Cancel", "survey_cancel")

	// btnUndoBatch is instantiated per batch with the batch id as data.
	undoMenu     = &tele.ReplyMarkup{}
	btnUndoBatch = undoMenu.Data("↩️ Undo", "del_batch")
)

func init() {
	mainMenu.Inline(
		mainMenu.Row(btnNewBroadcast, btnNewSurvey),
		mainMenu.Row(btnNewCast, btnDelCast),
		mainMenu.Row(btnRecentBatches, btnStats),
	)
	audienceMenu.Inline(
		audienceMenu.Row(btnAudAll, btnAudCohort),
		audienceMenu.Row(btnAudRange, btnAudManual),
		audienceMenu.Row(btnAudCancel),
	)
	collectMenu.Inline(collectMenu.Row(btnCollectDone, btnCollectCancel))
	confirmMenu.Inline(confirmMenu.Row(btnConfirmSend, btnConfirmCancel))
	surveyMenu.Inline(surveyMenu.Row(btnSurveyDone, btnSurveyCancel))
}

// undoKeyboard builds the single undo button for one batch.
func undoKeyboard(batchID string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("↩️ Undo this broadcast", "del_batch", batchID)))
	return menu
}

// batchListKeyboard builds one undo row per listed batch.
func batchListKeyboard(batches []storage.Batch) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, b := range batches {
		label := fmt.Sprintf("↩️ %s · %s · sent %d", shortID(b.BatchID), b.Status, b.SentCount)
		rows = append(rows, menu.Row(menu.Data(label, "del_batch", b.BatchID)))
	}
	menu.Inline(rows...)
	return menu
}

// voteKeyboard renders the survey options as inline vote buttons, one
// per row. The raw callback data is what the content bot parses.
func voteKeyboard(s *storage.Survey) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([][]tele.InlineButton, 0, len(s.Options))
	for _, opt := range s.Options {
		rows = append(rows, []tele.InlineButton{{
			Text: opt.Text,
			Data: survey.VoteCallback(s.SurveyID, opt.OptionID),
		}})
	}
	menu.InlineKeyboard = rows
	return menu
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
