package ballot

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"poagov/internal/model"
)

// Key selects one BallotCreated variant.
type Key struct {
	Type    model.ContractType
	Version model.ContractVersion
}

func (k Key) String() string {
	return k.Type.String() + "." + k.Version.String()
}

// Keys lists every deployed variant.
func Keys() []Key {
	out := make([]Key, 0, len(layouts))
	for _, v := range []model.ContractVersion{model.V1, model.V2} {
		for _, t := range model.ContractTypes {
			if t.SupportsVersion(v) {
				out = append(out, Key{Type: t, Version: v})
			}
		}
	}
	return out
}

// Config configures a Registry.
type Config struct {
	// Signatures overrides the topic0 of individual variants.
	Signatures map[Key]common.Hash
}

// Decoder decodes BallotCreated logs of one contract type and version.
type Decoder struct {
	key       Key
	signature common.Hash
	layout    layout
}

// Key returns the variant this decoder reads.
func (d *Decoder) Key() Key {
	return d.key
}

// Signature returns the topic0 this decoder accepts.
func (d *Decoder) Signature() common.Hash {
	return d.signature
}

// Decode converts a raw log into a BallotEvent.
func (d *Decoder) Decode(entry model.LogEntry) (model.BallotEvent, error) {
	if len(entry.Topics) == 0 {
		return model.BallotEvent{}, fmt.Errorf("%w: log has no topics", ErrSignatureMismatch)
	}
	if topic0 := entry.Topic0(); topic0 != d.signature {
		return model.BallotEvent{}, fmt.Errorf("%w: got %s, want %s", ErrSignatureMismatch, topic0.Hex(), d.signature.Hex())
	}
	if len(entry.Topics) != 1 {
		return model.BallotEvent{}, fmt.Errorf("%w: expected 1 topic, got %d", ErrMalformed, len(entry.Topics))
	}

	vals, err := d.layout.read(entry.Data)
	if err != nil {
		return model.BallotEvent{}, fmt.Errorf("decode %s: %w", d.key, err)
	}
	proposal, err := d.layout.build(vals)
	if err != nil {
		return model.BallotEvent{}, fmt.Errorf("decode %s: %w", d.key, err)
	}

	return model.BallotEvent{
		Contract:    d.key.Type,
		Version:     d.key.Version,
		BallotID:    vals.uint64(fieldID),
		StartTime:   vals.time(fieldStartTime),
		EndTime:     vals.time(fieldEndTime),
		Memo:        vals.text(fieldMemo),
		Creator:     vals.address(fieldCreator),
		Proposal:    proposal,
		Address:     entry.Address,
		BlockNumber: entry.BlockNumber,
		LogIndex:    entry.LogIndex,
		TxHash:      entry.TxHash,
	}, nil
}

// Registry holds one decoder per deployed variant.
type Registry struct {
	decoders map[Key]*Decoder
}

// NewRegistry builds decoders for every variant, checking each layout
// against the event ABI.
func NewRegistry(cfg Config) (*Registry, error) {
	for key := range cfg.Signatures {
		if _, ok := layouts[key]; !ok {
			return nil, fmt.Errorf("signature override: %w: %s", ErrUnsupported, key)
		}
	}

	decoders := make(map[Key]*Decoder, len(layouts))
	for key, l := range layouts {
		event, err := BallotCreatedEvent(key)
		if err != nil {
			return nil, err
		}
		if err := checkLayout(key, l, event.Inputs.NonIndexed()); err != nil {
			return nil, err
		}

		signature := event.ID
		if override, ok := cfg.Signatures[key]; ok {
			signature = override
		}
		decoders[key] = &Decoder{key: key, signature: signature, layout: l}
	}
	return &Registry{decoders: decoders}, nil
}

// Decoder returns the decoder for a contract type and version.
func (r *Registry) Decoder(t model.ContractType, v model.ContractVersion) (*Decoder, error) {
	key := Key{Type: t, Version: v}
	d, ok := r.decoders[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, key)
	}
	return d, nil
}
