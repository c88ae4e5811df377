package model

import "fmt"

// StartKind selects where a run begins scanning.
type StartKind int

const (
	StartEarliest StartKind = iota + 1
	StartLatest
	StartAt
	StartTail
)

// StartMode is the resolved --earliest/--latest/--start/--tail choice.
type StartMode struct {
	Kind  StartKind
	Block uint64
}

// Earliest starts at block 0.
func Earliest() StartMode { return StartMode{Kind: StartEarliest} }

// Latest starts at the first block mined after the run begins.
func Latest() StartMode { return StartMode{Kind: StartLatest} }

// StartBlock starts at block n, which must not be past the tip.
func StartBlock(n uint64) StartMode { return StartMode{Kind: StartAt, Block: n} }

// Tail starts so that the last n mined blocks are scanned, or at block 0 when n exceeds the tip.
func Tail(n uint64) StartMode { return StartMode{Kind: StartTail, Block: n} }

func (m StartMode) String() string {
	switch m.Kind {
	case StartEarliest:
		return "earliest"
	case StartLatest:
		return "latest"
	case StartAt:
		return fmt.Sprintf("start=%d", m.Block)
	case StartTail:
		return fmt.Sprintf("tail=%d", m.Block)
	default:
		return "unset"
	}
}
