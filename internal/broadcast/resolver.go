package broadcast

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode selects how the recipient list is produced.
type Mode string

const (
	// ModeAll targets every known recipient.
	ModeAll Mode = "all"
	// ModeRange targets recipients registered inside an inclusive
	// timestamp window.
	ModeRange Mode = "range"
	// ModeManual targets an explicit operator-supplied id list.
	ModeManual Mode = "manual"
	// ModeCohort targets recipients carrying a boolean flag, e.g. the
	// designated test cohort.
	ModeCohort Mode = "cohort"
)

// Selection carries the parameters for one resolve call.
type Selection struct {
	Mode Mode
	// Start and End bound ModeRange in Unix seconds, both inclusive.
	Start, End int64
	// Raw is the free-text id blob for ModeManual.
	Raw string
	// Flag names the cohort attribute for ModeCohort.
	Flag string
}

// UserDirectory is the recipient registry queries the resolver needs.
// *storage.UserRepo satisfies it.
type UserDirectory interface {
	IDsInRange(ctx context.Context, start, end int64) ([]int64, error)
	TestIDs(ctx context.Context, flag string) ([]int64, error)
}

// Resolver turns a selection into a concrete ordered recipient id list.
type Resolver struct {
	users UserDirectory
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Resolve produces the recipient list for the selection. An empty result
// is valid for the store-backed modes; ModeManual fails with
// ErrNoValidIDs when no token parses as an integer.
func (r *Resolver) Resolve(ctx context.Context, sel Selection) ([]int64, error) {
	switch sel.Mode {
	case ModeAll:
		return r.users.IDsInRange(ctx, 0, time.Now().Unix())
	case ModeRange:
		return r.users.IDsInRange(ctx, sel.Start, sel.End)
	case ModeManual:
		return ParseManualIDs(sel.Raw)
	case ModeCohort:
		return r.users.TestIDs(ctx, sel.Flag)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, sel.Mode)
	}
}

// ParseManualIDs splits a free-text blob on whitespace, commas and
// newlines and keeps the tokens that parse as integers, in input order.
// Duplicates are kept; deduplication is the caller's concern.
func ParseManualIDs(raw string) ([]int64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\r' || r == '\t'
	})

	var ids []int64
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, ErrNoValidIDs
	}
	return ids, nil
}
