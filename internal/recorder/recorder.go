package recorder

import (
	"errors"

	"DipSentinel/internal/model"
)

// ErrNoSnapshot is returned by Latest before the first pass is recorded.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// Recorder keeps the most recent screening snapshot. Each Record replaces the
// previous one; no history is retained.
type Recorder interface {
	Record(snap *model.Snapshot) error
	Latest() (*model.Snapshot, error)
	Close() error
}
