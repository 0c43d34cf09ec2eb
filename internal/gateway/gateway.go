package gateway

import "context"

// Gateway abstracts the messaging provider primitives the bots consume.
// All message content lives at the provider; the application only ever
// handles (chat id, message id) locators.
type Gateway interface {
	// SendText sends a plain text message and returns the delivered
	// message id.
	SendText(ctx context.Context, recipient int64, text string) (int, error)
	// Replay re-sends the message identified by (sourceChat, messageID)
	// to the recipient without a forward header and returns the
	// delivered message id.
	Replay(ctx context.Context, recipient int64, sourceChat int64, messageID int) (int, error)
	// DeleteMessage removes a previously delivered message from the
	// recipient's chat.
	DeleteMessage(ctx context.Context, recipient int64, messageID int) error
	// ArchiveCopy copies the message identified by (sourceChat,
	// messageID) into the durable archive channel and returns the
	// archived message id. Later replays use the archive copy, so they
	// do not depend on the original sender's chat.
	ArchiveCopy(ctx context.Context, sourceChat int64, messageID int) (int, error)
	// SendDocument uploads a local file to the recipient with a caption.
	SendDocument(ctx context.Context, recipient int64, path, caption string) error
}
