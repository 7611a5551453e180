// Package dedup decides how a scraped batch is written: insert, update in
// place or skip, keyed by (company_code, date, time, title).
package dedup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMode is returned for a duplicate mode outside Modes.
var ErrUnsupportedMode = errors.New("unsupported duplicate mode")

// Mode selects the duplicate-handling policy for a write.
type Mode string

const (
	ModeUpsert  Mode = "upsert"
	ModeReplace Mode = "replace"
	ModeSkip    Mode = "skip"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeUpsert, ModeReplace, ModeSkip}

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	names := make([]string, len(Modes))
	for i, known := range Modes {
		names[i] = string(known)
	}
	return "", fmt.Errorf("%w: %s. supported: %s", ErrUnsupportedMode, s, strings.Join(names, ", "))
}

// Action is the write decision for one candidate.
type Action int

const (
	ActionInsert Action = iota
	ActionUpdate
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Resolve returns the action for a candidate under a per-record mode, given
// whether a record with the same identity already exists. Replace works on a
// whole batch and always inserts.
func Resolve(mode Mode, exists bool) (Action, error) {
	switch mode {
	case ModeUpsert:
		if exists {
			return ActionUpdate, nil
		}
		return ActionInsert, nil
	case ModeSkip:
		if exists {
			return ActionSkip, nil
		}
		return ActionInsert, nil
	case ModeReplace:
		return ActionInsert, nil
	default:
		return 0, fmt.Errorf("%w: %s. supported: upsert, replace, skip", ErrUnsupportedMode, mode)
	}
}
