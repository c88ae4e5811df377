package model

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestNotificationJSONNamedEnums(t *testing.T) {
	event := BallotEvent{
		Contract:  ContractEmissionFunds,
		Version:   V2,
		BallotID:  7,
		StartTime: time.Unix(1519363702, 0).UTC(),
		EndTime:   time.Unix(1519536780, 0).UTC(),
		Memo:      "burn it",
		Proposal: EmissionProposal{
			Amount:   big.NewInt(1000),
			Receiver: common.HexToAddress("0x2222222222222222222222222222222222222222"),
			Action:   EmissionBurn,
		},
		BlockNumber: 100,
	}
	notification := NewNotification(event, NetworkCore, "https://core.poa.network", time.Unix(0, 0))

	data, err := json.Marshal(notification)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["network"] != "core" {
		t.Fatalf("network should be encoded by name: %v", decoded["network"])
	}
	if decoded["version"] != "v2" {
		t.Fatalf("version should be encoded by name: %v", decoded["version"])
	}
	inner, ok := decoded["event"].(map[string]interface{})
	if !ok {
		t.Fatalf("event should be an object")
	}
	if inner["contract"] != "emission" {
		t.Fatalf("contract should be encoded by name: %v", inner["contract"])
	}
	if notification.Key() != "core:v2:emission:7" {
		t.Fatalf("key mismatch: %s", notification.Key())
	}
}

func TestContractTypeSupportsVersion(t *testing.T) {
	if ContractEmissionFunds.SupportsVersion(V1) {
		t.Fatalf("emission funds must not exist under v1")
	}
	if NetworkXDai.SupportsVersion(V1) {
		t.Fatalf("xdai must not support v1")
	}
	for _, ct := range []ContractType{ContractKeys, ContractThreshold, ContractProxy} {
		if !ct.SupportsVersion(V1) || !ct.SupportsVersion(V2) {
			t.Fatalf("%s should support both versions", ct)
		}
	}
}

func TestKeysProposalJSONKeepsZeroAddresses(t *testing.T) {
	event := BallotEvent{
		Contract: ContractKeys,
		Version:  V1,
		BallotID: 3,
		Proposal: KeysProposal{
			BallotType:      BallotAddKey,
			AffectedKey:     common.HexToAddress("0x0000000000000000000000000000000000000021"),
			AffectedKeyType: KeyMining,
		},
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	zero := common.Address{}.Hex()
	if decoded["creator"] != zero {
		t.Fatalf("creator should be present as the zero address: %v", decoded["creator"])
	}
	proposal, ok := decoded["proposal"].(map[string]interface{})
	if !ok {
		t.Fatalf("proposal should be an object: %s", data)
	}
	if proposal["new_voting_key"] != zero || proposal["new_payout_key"] != zero {
		t.Fatalf("new keys should be present as the zero address: %v", proposal)
	}
	if proposal["ballot_type"] != float64(BallotAddKey) {
		t.Fatalf("ballot type mismatch: %v", proposal["ballot_type"])
	}
}
