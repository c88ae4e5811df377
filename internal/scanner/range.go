package scanner

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}

func (r BlockRange) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// clamp limits the range to at most maxBlocks blocks; zero means no limit.
func (r BlockRange) clamp(maxBlocks uint64) BlockRange {
	if maxBlocks == 0 || r.Len() <= maxBlocks {
		return r
	}
	return BlockRange{From: r.From, To: r.From + maxBlocks - 1}
}
