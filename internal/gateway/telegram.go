package gateway

import (
	"context"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"
)

// Telegram implements Gateway on top of a telebot.v3 bot instance.
// telebot calls are blocking; the context is checked before each call so
// a cancelled batch loop stops issuing new requests.
type Telegram struct {
	bot            *tele.Bot
	archiveChannel int64
}

// NewTelegram wraps an existing bot. archiveChannel is the storage
// channel ArchiveCopy writes into.
func NewTelegram(bot *tele.Bot, archiveChannel int64) *Telegram {
	return &Telegram{bot: bot, archiveChannel: archiveChannel}
}

// NewBot creates the underlying telebot instance with long polling.
func NewBot(token, apiURL string, pollTimeout time.Duration) (*tele.Bot, error) {
	pref := tele.Settings{
		Token: token,
		URL:   apiURL,
		Poller: &tele.LongPoller{
			Timeout: pollTimeout,
		},
	}
	return tele.NewBot(pref)
}

// SendText implements Gateway.
func (t *Telegram) SendText(ctx context.Context, recipient int64, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := t.bot.Send(tele.ChatID(recipient), text)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Replay implements Gateway by copying the referenced message, which
// re-sends the content without a forward header.
func (t *Telegram) Replay(ctx context.Context, recipient int64, sourceChat int64, messageID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg, err := t.bot.Copy(tele.ChatID(recipient), stored(sourceChat, messageID))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// DeleteMessage implements Gateway.
func (t *Telegram) DeleteMessage(ctx context.Context, recipient int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.bot.Delete(stored(recipient, messageID))
}

// ArchiveCopy implements Gateway.
func (t *Telegram) ArchiveCopy(ctx context.Context, sourceChat int64, messageID int) (int, error) {
	return t.Replay(ctx, t.archiveChannel, sourceChat, messageID)
}

// SendDocument implements Gateway.
func (t *Telegram) SendDocument(ctx context.Context, recipient int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := &tele.Document{File: tele.FromDisk(path), Caption: caption}
	_, err := t.bot.Send(tele.ChatID(recipient), doc)
	return err
}

func stored(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}
