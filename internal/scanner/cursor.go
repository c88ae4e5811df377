package scanner

import (
	"errors"
	"fmt"

	"poagov/internal/model"
)

// ErrStartBeyondTip is returned when --start names a block that has not been mined.
var ErrStartBeyondTip = errors.New("start block exceeds last block mined")

// InitialBlock resolves the first block to scan for a start mode and chain tip.
func InitialBlock(mode model.StartMode, tip uint64) (uint64, error) {
	switch mode.Kind {
	case model.StartEarliest:
		return 0, nil
	case model.StartLatest:
		return tip + 1, nil
	case model.StartAt:
		if mode.Block > tip {
			return 0, fmt.Errorf("%w: start %d, tip %d", ErrStartBeyondTip, mode.Block, tip)
		}
		return mode.Block, nil
	case model.StartTail:
		if mode.Block > tip {
			return 0, nil
		}
		return tip - mode.Block + 1, nil
	default:
		return 0, fmt.Errorf("unknown start mode %d", mode.Kind)
	}
}

// Cursor tracks the next block range to scan. Ranges it hands out are
// contiguous and only advance on Commit.
type Cursor struct {
	next      uint64
	maxRange  uint64
	committed bool
}

// NewCursor starts a cursor at first. maxRange caps the blocks per range; zero means no cap.
func NewCursor(first, maxRange uint64) *Cursor {
	return &Cursor{next: first, maxRange: maxRange}
}

// Next returns the uncommitted range up to tip, or false when nothing new was mined.
func (c *Cursor) Next(tip uint64) (BlockRange, bool) {
	if c.next > tip {
		return BlockRange{}, false
	}
	return BlockRange{From: c.next, To: tip}.clamp(c.maxRange), true
}

// Commit marks r as fully processed. r must start at the next uncommitted block.
func (c *Cursor) Commit(r BlockRange) error {
	if r.From != c.next || r.To < r.From {
		return fmt.Errorf("commit %s: expected range starting at %d", r, c.next)
	}
	c.next = r.To + 1
	c.committed = true
	return nil
}

// NextBlock returns the first block not yet committed.
func (c *Cursor) NextBlock() uint64 {
	return c.next
}

// LastCommitted returns the last committed block, if any range was committed.
func (c *Cursor) LastCommitted() (uint64, bool) {
	if !c.committed {
		return 0, false
	}
	return c.next - 1, true
}
