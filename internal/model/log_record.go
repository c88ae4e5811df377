package model

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LogRecord is the JSONL representation of a captured chain log.
type LogRecord struct {
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"tx_hash"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
}

// MarshalJSON ensures LogRecord is encoded with stable field names.
func (lr LogRecord) MarshalJSON() ([]byte, error) {
	type Alias LogRecord
	return json.Marshal(Alias(lr))
}

// UnmarshalJSON decodes a LogRecord from JSON.
func (lr *LogRecord) UnmarshalJSON(data []byte) error {
	type Alias LogRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*lr = LogRecord(a)
	return nil
}

// NewLogRecord converts a LogEntry into its JSONL form.
func NewLogRecord(entry LogEntry) LogRecord {
	topics := make([]string, 0, len(entry.Topics))
	for _, topic := range entry.Topics {
		topics = append(topics, topic.Hex())
	}
	return LogRecord{
		BlockNumber: entry.BlockNumber,
		TxHash:      entry.TxHash.Hex(),
		LogIndex:    entry.LogIndex,
		Address:     entry.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(entry.Data),
	}
}

// Entry parses the hex fields of the record back into a LogEntry.
func (lr LogRecord) Entry() (LogEntry, error) {
	if !common.IsHexAddress(lr.Address) {
		return LogEntry{}, fmt.Errorf("invalid address: %s", lr.Address)
	}

	topics := make([]common.Hash, 0, len(lr.Topics))
	for _, topic := range lr.Topics {
		raw, err := hexutil.Decode(topic)
		if err != nil {
			return LogEntry{}, fmt.Errorf("invalid topic %s: %w", topic, err)
		}
		if len(raw) != common.HashLength {
			return LogEntry{}, fmt.Errorf("invalid topic length: %s", topic)
		}
		topics = append(topics, common.BytesToHash(raw))
	}

	data := []byte{}
	if lr.Data != "" && lr.Data != "0x" {
		decoded, err := hexutil.Decode(lr.Data)
		if err != nil {
			return LogEntry{}, fmt.Errorf("invalid data: %w", err)
		}
		data = decoded
	}

	return LogEntry{
		Address:     common.HexToAddress(lr.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: lr.BlockNumber,
		LogIndex:    lr.LogIndex,
		TxHash:      common.HexToHash(lr.TxHash),
	}, nil
}
