package ballot

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"poagov/internal/model"
)

type fieldKind int

const (
	kindUint64 fieldKind = iota
	kindUint8
	kindTime
	kindAddress
	kindText
)

const (
	fieldID              = "id"
	fieldCreator         = "creator"
	fieldMemo            = "memo"
	fieldStartTime       = "startTime"
	fieldEndTime         = "endTime"
	fieldAffectedKey     = "affectedKey"
	fieldAffectedKeyType = "affectedKeyType"
	fieldBallotType      = "ballotType"
	fieldNewVotingKey    = "newVotingKey"
	fieldNewPayoutKey    = "newPayoutKey"
	fieldProposedValue   = "proposedValue"
	fieldContractType    = "contractType"
	fieldPayload         = "payload"
)

// field places one event parameter at a head word.
type field struct {
	name string
	word int
	kind fieldKind
}

// layout is the data-section layout of one BallotCreated variant.
type layout struct {
	fields []field
	build  func(values) (model.Proposal, error)
}

// layouts is the decoder table. Every entry must list its fields in
// head order so that word == position in the event's ABI inputs.
var layouts = map[Key]layout{
	{Type: model.ContractKeys, Version: model.V1}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldStartTime, 1, kindTime},
			{fieldEndTime, 2, kindTime},
			{fieldAffectedKey, 3, kindAddress},
			{fieldAffectedKeyType, 4, kindUint8},
			{fieldBallotType, 5, kindUint64},
			{fieldMemo, 6, kindText},
		},
		build: buildKeys,
	},
	{Type: model.ContractThreshold, Version: model.V1}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldStartTime, 1, kindTime},
			{fieldEndTime, 2, kindTime},
			{fieldProposedValue, 3, kindUint64},
			{fieldMemo, 4, kindText},
		},
		build: buildThreshold,
	},
	{Type: model.ContractProxy, Version: model.V1}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldStartTime, 1, kindTime},
			{fieldEndTime, 2, kindTime},
			{fieldProposedValue, 3, kindAddress},
			{fieldContractType, 4, kindUint64},
			{fieldMemo, 5, kindText},
		},
		build: buildProxy,
	},
	{Type: model.ContractKeys, Version: model.V2}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldCreator, 1, kindAddress},
			{fieldMemo, 2, kindText},
			{fieldStartTime, 3, kindTime},
			{fieldEndTime, 4, kindTime},
			{fieldAffectedKey, 5, kindAddress},
			{fieldAffectedKeyType, 6, kindUint8},
			{fieldBallotType, 7, kindUint64},
			{fieldNewVotingKey, 8, kindAddress},
			{fieldNewPayoutKey, 9, kindAddress},
		},
		build: buildKeys,
	},
	{Type: model.ContractThreshold, Version: model.V2}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldCreator, 1, kindAddress},
			{fieldMemo, 2, kindText},
			{fieldStartTime, 3, kindTime},
			{fieldEndTime, 4, kindTime},
			{fieldProposedValue, 5, kindUint64},
		},
		build: buildThreshold,
	},
	{Type: model.ContractProxy, Version: model.V2}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldCreator, 1, kindAddress},
			{fieldMemo, 2, kindText},
			{fieldStartTime, 3, kindTime},
			{fieldEndTime, 4, kindTime},
			{fieldProposedValue, 5, kindAddress},
			{fieldContractType, 6, kindUint64},
		},
		build: buildProxy,
	},
	{Type: model.ContractEmissionFunds, Version: model.V2}: {
		fields: []field{
			{fieldID, 0, kindUint64},
			{fieldCreator, 1, kindAddress},
			{fieldMemo, 2, kindText},
			{fieldStartTime, 3, kindTime},
			{fieldEndTime, 4, kindTime},
			{fieldPayload, 5, kindText},
		},
		build: buildEmission,
	},
}

// values holds the fields read from one log, keyed by parameter name.
type values map[string]interface{}

func (v values) uint64(name string) uint64 {
	n, _ := v[name].(uint64)
	return n
}

func (v values) uint8(name string) uint8 {
	n, _ := v[name].(uint8)
	return n
}

func (v values) time(name string) time.Time {
	t, _ := v[name].(time.Time)
	return t
}

func (v values) address(name string) common.Address {
	a, _ := v[name].(common.Address)
	return a
}

func (v values) text(name string) string {
	s, _ := v[name].(string)
	return s
}

func (l layout) read(data []byte) (values, error) {
	w := words(data)
	if w.count() < len(l.fields) {
		return nil, fmt.Errorf("%w: expected at least %d words, got %d", ErrMalformed, len(l.fields), w.count())
	}

	out := make(values, len(l.fields))
	for _, f := range l.fields {
		var (
			value interface{}
			err   error
		)
		switch f.kind {
		case kindUint64:
			value, err = w.uint64(f.word)
		case kindUint8:
			value, err = w.uint8(f.word)
		case kindTime:
			value, err = w.timestamp(f.word)
		case kindAddress:
			value, err = w.address(f.word)
		case kindText:
			value, err = w.text(f.word)
		default:
			err = fmt.Errorf("unknown field kind %d", f.kind)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		out[f.name] = value
	}
	return out, nil
}

func (l layout) has(name string) bool {
	for _, f := range l.fields {
		if f.name == name {
			return true
		}
	}
	return false
}

func buildKeys(v values) (model.Proposal, error) {
	keyType := model.KeyType(v.uint8(fieldAffectedKeyType))
	if keyType > model.KeyPayout {
		return nil, fmt.Errorf("%w: unknown key type %d", ErrMalformed, keyType)
	}
	ballotType := v.uint64(fieldBallotType)
	if ballotType > uint64(model.BallotSwapKey) {
		return nil, fmt.Errorf("%w: unknown keys ballot type %d", ErrMalformed, ballotType)
	}
	return model.KeysProposal{
		BallotType:      model.BallotType(ballotType),
		AffectedKey:     v.address(fieldAffectedKey),
		AffectedKeyType: keyType,
		NewVotingKey:    v.address(fieldNewVotingKey),
		NewPayoutKey:    v.address(fieldNewPayoutKey),
	}, nil
}

func buildThreshold(v values) (model.Proposal, error) {
	return model.ThresholdProposal{ProposedValue: v.uint64(fieldProposedValue)}, nil
}

func buildProxy(v values) (model.Proposal, error) {
	return model.ProxyProposal{
		ProposedValue: v.address(fieldProposedValue),
		ContractKind:  v.uint64(fieldContractType),
	}, nil
}

func buildEmission(v values) (model.Proposal, error) {
	return parseEmissionPayload(v.text(fieldPayload))
}
