package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLogRecordEntryRoundTrip(t *testing.T) {
	original := LogEntry{
		Address:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Topics:      []common.Hash{common.HexToHash("0xaaa"), common.HexToHash("0xbbb")},
		Data:        []byte{0xde, 0xad, 0xbe, 0xef},
		BlockNumber: 4000000,
		LogIndex:    12,
		TxHash:      common.HexToHash("0xdef456"),
	}

	b, err := json.Marshal(NewLogRecord(original))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var record LogRecord
	if err := json.Unmarshal(b, &record); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	decoded, err := record.Entry()
	if err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestLogRecordEntryRejectsShortTopic(t *testing.T) {
	record := LogRecord{
		Address: "0x1111111111111111111111111111111111111111",
		Topics:  []string{"0xabcd"},
		Data:    "0x",
	}
	if _, err := record.Entry(); err == nil {
		t.Fatalf("expected error for short topic")
	}
}

func TestLogRecordEntryRejectsBadAddress(t *testing.T) {
	record := LogRecord{Address: "not-an-address"}
	if _, err := record.Entry(); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}
