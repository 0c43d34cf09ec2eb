package contentbot

import (
	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// castMenuColumns is the number of buttons per keyboard row.
const castMenuColumns = 2

// phoneKeyboard is the one-button contact request keyboard.
func phoneKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	menu.Reply(menu.Row(menu.Contact("📱 Share phone number")))
	return menu
}

// castKeyboard builds a reply keyboard with one button per cast,
// arranged two per row in the repository's sort order.
func castKeyboard(casts []storage.Cast) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	var rows []tele.Row
	var row tele.Row
	for _, cast := range casts {
		row = append(row, menu.Text(cast.Name))
		if len(row) == castMenuColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	menu.Reply(rows...)
	return menu
}
