package adminbot

import (
	"sync"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
)

// GlobalLock serializes update processing behind a single mutex. The
// wizard sessions and the collector mutate shared state per step, and
// the panel is low-traffic by nature, so one update at a time keeps
// every flow race-free without per-structure locking.
func GlobalLock() tele.MiddlewareFunc {
	var mu sync.Mutex
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			mu.Lock()
			defer mu.Unlock()
			return next(c)
		}
	}
}

// AdminOnly drops updates from anyone not on the operator list.
func AdminOnly(isAdmin func(int64) bool, log zerolog.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !isAdmin(sender.ID) {
				if sender != nil {
					log.Warn().Int64("user_id", sender.ID).Msg("non-operator update dropped")
				}
				return nil
			}
			return next(c)
		}
	}
}
