package broadcast

import (
	"context"
	"fmt"

	"github.com/mahdighaemi123/ActCastBot/internal/gateway"
	"github.com/mahdighaemi123/ActCastBot/internal/storage"
)

// Collector accumulates the ordered message bundle for one collection
// session. Each appended message is first copied into the durable
// archive channel, and only the archive locator is kept, so later
// replays never depend on the operator's chat.
//
// A Collector is scoped to a single operator session and is not safe
// for concurrent use; the panel serializes updates anyway.
type Collector struct {
	gw          gateway.Gateway
	archiveChat int64
	refs        []storage.MessageRef
}

// NewCollector creates an empty Collector archiving into archiveChat.
func NewCollector(gw gateway.Gateway, archiveChat int64) *Collector {
	return &Collector{gw: gw, archiveChat: archiveChat}
}

// Append archives the referenced message and appends the archive locator
// to the session bundle. It returns the new bundle size.
func (c *Collector) Append(ctx context.Context, sourceChat int64, messageID int) (int, error) {
	archivedID, err := c.gw.ArchiveCopy(ctx, sourceChat, messageID)
	if err != nil {
		return len(c.refs), fmt.Errorf("archive copy: %w", err)
	}

	c.refs = append(c.refs, storage.MessageRef{
		ChatID:    c.archiveChat,
		MessageID: archivedID,
	})
	return len(c.refs), nil
}

// Count returns the number of accumulated refs.
func (c *Collector) Count() int { return len(c.refs) }

// Finalize returns the collected bundle in append order and fails with
// ErrEmptyBundle when nothing was collected. The returned slice is a
// copy; the fan-out engine treats it as immutable.
func (c *Collector) Finalize() ([]storage.MessageRef, error) {
	if len(c.refs) == 0 {
		return nil, ErrEmptyBundle
	}
	out := make([]storage.MessageRef, len(c.refs))
	copy(out, c.refs)
	return out, nil
}

// Cancel discards everything accumulated in the session.
func (c *Collector) Cancel() {
	c.refs = nil
}
