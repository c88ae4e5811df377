package model

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// KeyType identifies the validator key affected by a keys ballot.
type KeyType uint8

const (
	KeyInvalid KeyType = iota
	KeyMining
	KeyVoting
	KeyPayout
)

func (k KeyType) String() string {
	switch k {
	case KeyInvalid:
		return "InvalidKey"
	case KeyMining:
		return "MiningKey"
	case KeyVoting:
		return "VotingKey"
	case KeyPayout:
		return "PayoutKey"
	default:
		return fmt.Sprintf("KeyType(%d)", uint8(k))
	}
}

// BallotType is what a keys ballot does with the affected key.
type BallotType uint8

const (
	BallotInvalid BallotType = iota
	BallotAddKey
	BallotRemoveKey
	BallotSwapKey
)

func (b BallotType) String() string {
	switch b {
	case BallotInvalid:
		return "InvalidKey"
	case BallotAddKey:
		return "AddKey"
	case BallotRemoveKey:
		return "RemoveKey"
	case BallotSwapKey:
		return "SwapKey"
	default:
		return fmt.Sprintf("BallotType(%d)", uint8(b))
	}
}

// Proposal is the type-specific proposed value carried by a ballot.
// Implementations: KeysProposal, ThresholdProposal, ProxyProposal, EmissionProposal.
type Proposal interface {
	ContractType() ContractType
	proposal()
}

// KeysProposal proposes a change to a validator key.
type KeysProposal struct {
	BallotType      BallotType     `json:"ballot_type"`
	AffectedKey     common.Address `json:"affected_key"`
	AffectedKeyType KeyType        `json:"affected_key_type"`
	NewVotingKey    common.Address `json:"new_voting_key"`
	NewPayoutKey    common.Address `json:"new_payout_key"`
}

// ThresholdProposal proposes a new minimum voter threshold.
type ThresholdProposal struct {
	ProposedValue uint64 `json:"proposed_value"`
}

// ProxyProposal proposes a new implementation address for a proxied contract.
type ProxyProposal struct {
	ProposedValue common.Address `json:"proposed_value"`
	ContractKind  uint64         `json:"contract_type"`
}

// EmissionAction is what an emission-funds ballot does with the funds.
type EmissionAction string

const (
	EmissionSend   EmissionAction = "send"
	EmissionBurn   EmissionAction = "burn"
	EmissionFreeze EmissionAction = "freeze"
)

// EmissionProposal is the structured payload of an emission-funds ballot.
type EmissionProposal struct {
	Amount   *big.Int       `json:"amount"`
	Receiver common.Address `json:"receiver"`
	Action   EmissionAction `json:"action"`
}

func (KeysProposal) ContractType() ContractType      { return ContractKeys }
func (ThresholdProposal) ContractType() ContractType { return ContractThreshold }
func (ProxyProposal) ContractType() ContractType     { return ContractProxy }
func (EmissionProposal) ContractType() ContractType  { return ContractEmissionFunds }

func (KeysProposal) proposal()      {}
func (ThresholdProposal) proposal() {}
func (ProxyProposal) proposal()     {}
func (EmissionProposal) proposal()  {}

// BallotEvent is a decoded BallotCreated log.
type BallotEvent struct {
	Contract    ContractType    `json:"contract"`
	Version     ContractVersion `json:"version"`
	BallotID    uint64          `json:"ballot_id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Memo        string          `json:"memo"`
	Creator     common.Address  `json:"creator"`
	Proposal    Proposal        `json:"proposal"`
	Address     common.Address  `json:"address"`
	BlockNumber uint64          `json:"block_number"`
	LogIndex    uint64          `json:"log_index"`
	TxHash      common.Hash     `json:"tx_hash"`
}

// Keys returns the keys proposal, if the event is a keys ballot.
func (e BallotEvent) Keys() (KeysProposal, bool) {
	p, ok := e.Proposal.(KeysProposal)
	return p, ok
}

// Threshold returns the threshold proposal, if the event is a threshold ballot.
func (e BallotEvent) Threshold() (ThresholdProposal, bool) {
	p, ok := e.Proposal.(ThresholdProposal)
	return p, ok
}

// Proxy returns the proxy proposal, if the event is a proxy ballot.
func (e BallotEvent) Proxy() (ProxyProposal, bool) {
	p, ok := e.Proposal.(ProxyProposal)
	return p, ok
}

// Emission returns the emission proposal, if the event is an emission-funds ballot.
func (e BallotEvent) Emission() (EmissionProposal, bool) {
	p, ok := e.Proposal.(EmissionProposal)
	return p, ok
}

// Before orders events by block number, then log index.
func (e BallotEvent) Before(other BallotEvent) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.LogIndex < other.LogIndex
}
