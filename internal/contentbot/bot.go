// Package contentbot is the user-facing bot: registration, phone
// capture, the cast menu and survey voting.
package contentbot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
	"github.com/mahdighaemi123/ActCastBot/internal/survey"
)

// handlerTimeout bounds the storage work done for a single update.
const handlerTimeout = 15 * time.Second

// Bot wires the content bot handlers to the storage repositories.
type Bot struct {
	bot     *tele.Bot
	users   *storage.UserRepo
	casts   *storage.CastRepo
	surveys *storage.SurveyRepo
	log     zerolog.Logger
}

// New builds the content bot on an existing telebot instance.
func New(bot *tele.Bot, users *storage.UserRepo, casts *storage.CastRepo, surveys *storage.SurveyRepo, log zerolog.Logger) *Bot {
	b := &Bot{
		bot:     bot,
		users:   users,
		casts:   casts,
		surveys: surveys,
		log:     log,
	}
	b.register()
	return b
}

// Start begins long polling. It blocks until Stop is called.
func (b *Bot) Start() { b.bot.Start() }

// Stop terminates the long poller.
func (b *Bot) Stop() { b.bot.Stop() }

func (b *Bot) register() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle(tele.OnContact, b.handleContact)
	b.bot.Handle(tele.OnText, b.handleText)
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

func (b *Bot) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// handleStart registers the sender and either asks for their phone or
// shows the cast menu.
func (b *Bot) handleStart(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()

	sender := c.Sender()
	u := &storage.User{
		UserID:    sender.ID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		Username:  sender.Username,
	}
	if err := b.users.Register(ctx, u); err != nil {
		b.log.Error().Int64("user_id", sender.ID).Err(err).Msg("register failed")
		return c.Send("Something went wrong, please try again.")
	}
	if err := b.users.AppendHistory(ctx, sender.ID, historyEntry("start")); err != nil {
		b.log.Warn().Int64("user_id", sender.ID).Err(err).Msg("history append failed")
	}

	existing, err := b.users.Get(ctx, sender.ID)
	if err == nil && existing.ProfileCompleted {
		return b.sendCastMenu(ctx, c, "Welcome back! Pick something to watch:")
	}
	return c.Send("Welcome! Please share your phone number to continue.", phoneKeyboard())
}

// handleContact stores the shared phone and unlocks the cast menu.
// Contacts forwarded on behalf of someone else are rejected.
func (b *Bot) handleContact(c tele.Context) error {
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}
	if contact.UserID != c.Sender().ID {
		return c.Send("Please share your own contact using the button below.", phoneKeyboard())
	}

	ctx, cancel := b.ctx()
	defer cancel()

	if err := b.users.SetPhone(ctx, c.Sender().ID, contact.PhoneNumber); err != nil {
		b.log.Error().Int64("user_id", c.Sender().ID).Err(err).Msg("set phone failed")
		return c.Send("Something went wrong, please try again.")
	}
	if err := b.users.AppendHistory(ctx, c.Sender().ID, historyEntry("phone")); err != nil {
		b.log.Warn().Int64("user_id", c.Sender().ID).Err(err).Msg("history append failed")
	}
	return b.sendCastMenu(ctx, c, "Thanks! Pick something to watch:")
}

// handleText treats any text as a cast menu selection.
func (b *Bot) handleText(c tele.Context) error {
	ctx, cancel := b.ctx()
	defer cancel()

	name := strings.TrimSpace(c.Text())
	cast, err := b.casts.ByName(ctx, name)
	if err == storage.ErrNotFound {
		return b.sendCastMenu(ctx, c, "I don't know that one. Pick something from the menu:")
	}
	if err != nil {
		b.log.Error().Str("cast", name).Err(err).Msg("cast lookup failed")
		return c.Send("Something went wrong, please try again.")
	}

	if _, err := b.bot.Copy(c.Sender(), storedRef(cast.Ref)); err != nil {
		b.log.Error().Str("cast", name).Int64("user_id", c.Sender().ID).Err(err).Msg("cast replay failed")
		return c.Send("That one is unavailable right now.")
	}
	if err := b.users.AppendHistory(ctx, c.Sender().ID, historyEntry("cast:"+name)); err != nil {
		b.log.Warn().Int64("user_id", c.Sender().ID).Err(err).Msg("history append failed")
	}
	return nil
}

// handleCallback routes survey vote callbacks. Everything else is
// acknowledged silently so the client's spinner clears.
func (b *Bot) handleCallback(c tele.Context) error {
	data := strings.TrimPrefix(c.Callback().Data, "\f")
	surveyID, optionID, ok := survey.ParseVoteCallback(data)
	if !ok {
		return c.Respond()
	}

	ctx, cancel := b.ctx()
	defer cancel()

	if err := b.surveys.Vote(ctx, surveyID, c.Sender().ID, optionID); err != nil {
		if err == storage.ErrNotFound {
			return c.Respond(&tele.CallbackResponse{Text: "This survey is closed."})
		}
		b.log.Error().Str("survey_id", surveyID).Err(err).Msg("vote failed")
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong, please try again."})
	}

	if err := b.users.AppendHistory(ctx, c.Sender().ID, historyEntry("vote:"+surveyID)); err != nil {
		b.log.Warn().Int64("user_id", c.Sender().ID).Err(err).Msg("history append failed")
	}

	s, err := b.surveys.Get(ctx, surveyID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Vote recorded."})
	}
	reply, ok := survey.ReplyFor(s, optionID)
	if !ok {
		reply = "Vote recorded."
	}
	return c.Respond(&tele.CallbackResponse{Text: reply})
}

// sendCastMenu renders the live cast list as a reply keyboard.
func (b *Bot) sendCastMenu(ctx context.Context, c tele.Context, text string) error {
	casts, err := b.casts.All(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("cast list failed")
		return c.Send("Something went wrong, please try again.")
	}
	if len(casts) == 0 {
		return c.Send("Nothing to watch yet, check back soon.")
	}
	return c.Send(text, castKeyboard(casts))
}

func historyEntry(value string) storage.HistoryEntry {
	return storage.HistoryEntry{Value: value, At: time.Now().Unix()}
}

func storedRef(ref storage.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
}
