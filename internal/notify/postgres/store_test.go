package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poagov/internal/model"
)

func TestRowArgs(t *testing.T) {
	start := time.Date(2018, 2, 23, 5, 28, 22, 0, time.UTC)
	n := model.NewNotification(model.BallotEvent{
		Contract:    model.ContractThreshold,
		Version:     model.V1,
		BallotID:    2,
		StartTime:   start,
		EndTime:     start.Add(48 * time.Hour),
		Memo:        "raise threshold",
		Proposal:    model.ThresholdProposal{ProposedValue: 4},
		BlockNumber: 1200,
		LogIndex:    3,
		TxHash:      common.HexToHash("0x01"),
	}, model.NetworkSokol, "https://sokol.poa.network", start)

	args, err := rowArgs(n)
	if err != nil {
		t.Fatalf("row args: %v", err)
	}
	if len(args) != 12 {
		t.Fatalf("expected 12 args, got %d", len(args))
	}
	if args[0] != "sokol" || args[1] != "v1" || args[2] != "threshold" {
		t.Fatalf("key columns mismatch: %v", args[:3])
	}
	if args[3] != int64(2) || args[4] != int64(1200) || args[5] != int64(3) {
		t.Fatalf("numeric columns mismatch: %v", args[3:6])
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(args[10].([]byte), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["proposed_value"] != float64(4) {
		t.Fatalf("payload mismatch: %v", payload)
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
