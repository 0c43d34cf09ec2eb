// Package adminbot is the operator panel: broadcast, survey and cast
// wizards over inline menus, with batch undo.
package adminbot

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/broadcast"
	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// handlerTimeout bounds the storage work done for a single update.
// Fan-out and undo run detached with their own lifetimes.
const handlerTimeout = 30 * time.Second

// Bot wires the operator panel handlers to the broadcast engine and
// the storage repositories.
type Bot struct {
	bot      *tele.Bot
	gw       gateway.Gateway
	engine   *broadcast.Engine
	resolver *broadcast.Resolver

	users   *storage.UserRepo
	casts   *storage.CastRepo
	surveys *storage.SurveyRepo
	batches *storage.BatchRepo

	archiveChat int64
	sessions    *Sessions
	log         zerolog.Logger
}

// Deps bundles the collaborators the panel needs.
type Deps struct {
	Bot      *tele.Bot
	Gateway  gateway.Gateway
	Engine   *broadcast.Engine
	Resolver *broadcast.Resolver

	Users   *storage.UserRepo
	Casts   *storage.CastRepo
	Surveys *storage.SurveyRepo
	Batches *storage.BatchRepo

	ArchiveChat int64
	IsAdmin     func(int64) bool
	Log         zerolog.Logger
}

// New builds the panel and registers its handlers and middleware.
func New(d Deps) *Bot {
	b := &Bot{
		bot:         d.Bot,
		gw:          d.Gateway,
		engine:      d.Engine,
		resolver:    d.Resolver,
		users:       d.Users,
		casts:       d.Casts,
		surveys:     d.Surveys,
		batches:     d.Batches,
		archiveChat: d.ArchiveChat,
		sessions:    NewSessions(),
		log:         d.Log,
	}
	b.bot.Use(AdminOnly(d.IsAdmin, d.Log), GlobalLock())
	b.register()
	return b
}

// Start begins long polling. It blocks until Stop is called.
func (b *Bot) Start() { b.bot.Start() }

// Stop terminates the long poller.
func (b *Bot) Stop() { b.bot.Stop() }

func (b *Bot) register() {
	b.bot.Handle("/start", b.handleMenu)
	b.bot.Handle("/cancel", b.handleCancel)

	b.bot.Handle(&btnNewBroadcast, b.handleNewBroadcast)
	b.bot.Handle(&btnAudAll, b.handleAudienceAll)
	b.bot.Handle(&btnAudCohort, b.handleAudienceCohort)
	b.bot.Handle(&btnAudRange, b.handleAudienceRange)
	b.bot.Handle(&btnAudManual, b.handleAudienceManual)
	b.bot.Handle(&btnAudCancel, b.handleFlowCancel)
	b.bot.Handle(&btnCollectDone, b.handleCollectDone)
	b.bot.Handle(&btnCollectCancel, b.handleFlowCancel)
	b.bot.Handle(&btnConfirmSend, b.handleConfirmSend)
	b.bot.Handle(&btnConfirmCancel, b.handleFlowCancel)
	b.bot.Handle(&btnUndoBatch, b.handleUndoBatch)

	b.bot.Handle(&btnNewSurvey, b.handleNewSurvey)
	b.bot.Handle(&btnSurveyDone, b.handleSurveyDone)
	b.bot.Handle(&btnSurveyCancel, b.handleFlowCancel)

	b.bot.Handle(&btnNewCast, b.handleNewCast)
	b.bot.Handle(&btnDelCast, b.handleDelCast)

	b.bot.Handle(&btnRecentBatches, b.handleBatches)
	b.bot.Handle(&btnStats, b.handleStats)

	b.bot.Handle(tele.OnText, b.dispatchText)
	for _, kind := range mediaKinds {
		b.bot.Handle(kind, b.dispatchMedia)
	}
}

// mediaKinds are the update types accepted as bundle or cast content.
var mediaKinds = []string{
	tele.OnPhoto, tele.OnVideo, tele.OnDocument, tele.OnAudio,
	tele.OnVoice, tele.OnAnimation, tele.OnSticker, tele.OnVideoNote,
}

func (b *Bot) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

func (b *Bot) handleMenu(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	return c.Send("Operator panel — pick an action:", mainMenu)
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	return c.Send("Cancelled. Back to the menu:", mainMenu)
}

func (b *Bot) handleFlowCancel(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Cancelled. Back to the menu:", mainMenu)
}

// dispatchText routes plain text by wizard state.
func (b *Bot) dispatchText(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	switch sess.State {
	case StateAwaitRange:
		return b.handleRangeInput(c, sess)
	case StateAwaitManual:
		return b.handleManualInput(c, sess)
	case StateCollecting:
		return b.handleCollectItem(c, sess)
	case StateSurveyQuestion:
		return b.handleSurveyQuestion(c, sess)
	case StateSurveyOptions:
		return b.handleSurveyOption(c, sess)
	case StateCastName:
		return b.handleCastName(c, sess)
	case StateCastContent:
		return b.handleCastContent(c, sess)
	case StateCastDelete:
		return b.handleCastDelete(c, sess)
	default:
		return c.Send("Pick an action:", mainMenu)
	}
}

// dispatchMedia routes non-text messages; only the collecting and cast
// content steps accept them.
func (b *Bot) dispatchMedia(c tele.Context) error {
	sess := b.sessions.Get(c.Sender().ID)
	switch sess.State {
	case StateCollecting:
		return b.handleCollectItem(c, sess)
	case StateCastContent:
		return b.handleCastContent(c, sess)
	default:
		return c.Send("Pick an action:", mainMenu)
	}
}
