package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poagov/internal/model"
)

const emailSubject = "POA Network Governance Notification"

const timeLayout = "2006-01-02 15:04:05 MST"

// FormatBody renders the plain-text body sent to validators.
func FormatBody(n model.Notification) string {
	e := n.Event
	var b strings.Builder
	line := func(label string, value interface{}) {
		fmt.Fprintf(&b, "%s: %v\n", label, value)
	}

	line("Network", n.Network)
	line("RPC Endpoint", n.Endpoint)
	line("Block Number", n.BlockNumber)
	line("Contract", e.Contract.ContractName())
	line("Version", n.Version)
	line("Ballot ID", e.BallotID)
	if e.Creator != (common.Address{}) {
		line("Creator", e.Creator.Hex())
	}
	line("Voting Start Time", e.StartTime.UTC().Format(timeLayout))
	line("Voting End Time", e.EndTime.UTC().Format(timeLayout))
	line("Memo", e.Memo)

	switch p := e.Proposal.(type) {
	case model.KeysProposal:
		line("Ballot Type", p.BallotType)
		line("Affected Key", p.AffectedKey.Hex())
		line("Affected Key Type", p.AffectedKeyType)
		if p.NewVotingKey != (common.Address{}) {
			line("New Voting Key", p.NewVotingKey.Hex())
		}
		if p.NewPayoutKey != (common.Address{}) {
			line("New Payout Key", p.NewPayoutKey.Hex())
		}
	case model.ThresholdProposal:
		line("Proposed Value", p.ProposedValue)
	case model.ProxyProposal:
		line("Proposed Value", p.ProposedValue.Hex())
		line("Contract Type", p.ContractKind)
	case model.EmissionProposal:
		line("Amount", p.Amount)
		line("Receiver", p.Receiver.Hex())
		line("Action", p.Action)
	}

	line("Transaction", e.TxHash.Hex())
	line("Generated At", n.GeneratedAt.UTC().Format(time.RFC3339))
	return b.String()
}
