package model

import "github.com/ethereum/go-ethereum/common"

// LogEntry is a raw contract log as returned by eth_getLogs.
type LogEntry struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	BlockNumber uint64
	LogIndex    uint64
	TxHash      common.Hash
}

// Topic0 returns the event signature topic, or the zero hash when topics are empty.
func (l LogEntry) Topic0() common.Hash {
	if len(l.Topics) == 0 {
		return common.Hash{}
	}
	return l.Topics[0]
}
