package adminbot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

func (b *Bot) handleNewCast(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	sess := b.sessions.Get(c.Sender().ID)
	sess.State = StateCastName
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit("Send the cast name. It becomes the menu button users tap.")
}

func (b *Bot) handleCastName(c tele.Context, sess *Session) error {
	name := strings.TrimSpace(c.Text())
	if name == "" {
		return c.Send("The name cannot be empty. Send the cast name.")
	}
	sess.CastName = name
	sess.State = StateCastContent
	return c.Send(fmt.Sprintf("Now send the content for %q — any single message.", name))
}

// handleCastContent archives the content message and stores the cast
// under the chosen name, replacing any previous content.
func (b *Bot) handleCastContent(c tele.Context, sess *Session) error {
	ctx, cancel := b.ctx()
	defer cancel()

	msg := c.Message()
	archivedID, err := b.gw.ArchiveCopy(ctx, msg.Chat.ID, msg.ID)
	if err != nil {
		b.log.Error().Str("cast", sess.CastName).Err(err).Msg("cast archive failed")
		return c.Send("Could not archive that message, try sending it again.")
	}

	ref := storage.MessageRef{ChatID: b.archiveChat, MessageID: archivedID}
	if err := b.casts.Upsert(ctx, sess.CastName, ref); err != nil {
		b.log.Error().Str("cast", sess.CastName).Err(err).Msg("cast upsert failed")
		return c.Send("Could not save the cast, please try again.")
	}

	name := sess.CastName
	b.sessions.Reset(c.Sender().ID)
	return c.Send(fmt.Sprintf("🎬 Cast %q saved.", name), mainMenu)
}

func (b *Bot) handleDelCast(c tele.Context) error {
	b.sessions.Reset(c.Sender().ID)
	sess := b.sessions.Get(c.Sender().ID)
	sess.State = StateCastDelete

	ctx, cancel := b.ctx()
	defer cancel()

	casts, err := b.casts.All(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("cast list failed")
		return c.Respond(&tele.CallbackResponse{Text: "Could not load the cast list."})
	}
	if err := c.Respond(); err != nil {
		return err
	}
	if len(casts) == 0 {
		b.sessions.Reset(c.Sender().ID)
		return c.Edit("No casts yet. Back to the menu:", mainMenu)
	}

	names := make([]string, len(casts))
	for i, cast := range casts {
		names[i] = "• " + cast.Name
	}
	return c.Edit("Send the name of the cast to remove:\n" + strings.Join(names, "\n"))
}

func (b *Bot) handleCastDelete(c tele.Context, sess *Session) error {
	ctx, cancel := b.ctx()
	defer cancel()

	name := strings.TrimSpace(c.Text())
	err := b.casts.Delete(ctx, name)
	if err == storage.ErrNotFound {
		return c.Send(fmt.Sprintf("No cast named %q. Send another name or /cancel.", name))
	}
	if err != nil {
		b.log.Error().Str("cast", name).Err(err).Msg("cast delete failed")
		return c.Send("Could not delete the cast, please try again.")
	}

	b.sessions.Reset(c.Sender().ID)
	return c.Send(fmt.Sprintf("🗑 Cast %q removed.", name), mainMenu)
}
