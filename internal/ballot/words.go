package ballot

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const wordSize = 32

// maxTimestamp is 9999-12-31T23:59:59Z, the last second time.Time can encode as RFC 3339.
const maxTimestamp = 253402300799

// words reads 32-byte big-endian words from a log data payload.
type words []byte

func (w words) count() int {
	return len(w) / wordSize
}

func (w words) word(index int) ([]byte, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative word index %d", ErrMalformed, index)
	}
	start := index * wordSize
	end := start + wordSize
	if end > len(w) {
		return nil, fmt.Errorf("%w: word %d out of range (%d words)", ErrMalformed, index, w.count())
	}
	return w[start:end], nil
}

func (w words) uint(index int) (*uint256.Int, error) {
	raw, err := w.word(index)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(raw), nil
}

func (w words) uint64(index int) (uint64, error) {
	v, err := w.uint(index)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: word %d overflows uint64", ErrMalformed, index)
	}
	return v.Uint64(), nil
}

func (w words) uint8(index int) (uint8, error) {
	v, err := w.uint64(index)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: word %d overflows uint8", ErrMalformed, index)
	}
	return uint8(v), nil
}

func (w words) timestamp(index int) (time.Time, error) {
	v, err := w.uint64(index)
	if err != nil {
		return time.Time{}, err
	}
	if v > maxTimestamp {
		return time.Time{}, fmt.Errorf("%w: word %d is not a valid unix time", ErrMalformed, index)
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

func (w words) address(index int) (common.Address, error) {
	raw, err := w.word(index)
	if err != nil {
		return common.Address{}, err
	}
	for _, b := range raw[:wordSize-common.AddressLength] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("%w: word %d has dirty address padding", ErrMalformed, index)
		}
	}
	return common.BytesToAddress(raw[wordSize-common.AddressLength:]), nil
}

// bytes follows the relative offset stored at index to a length-prefixed payload.
func (w words) bytes(index int) ([]byte, error) {
	offset, err := w.uint(index)
	if err != nil {
		return nil, err
	}
	if !offset.IsUint64() || offset.Uint64() > uint64(len(w)) {
		return nil, fmt.Errorf("%w: word %d offset out of range", ErrMalformed, index)
	}
	start := int(offset.Uint64())
	if start+wordSize > len(w) {
		return nil, fmt.Errorf("%w: word %d length prefix out of range", ErrMalformed, index)
	}

	length := new(uint256.Int).SetBytes32(w[start : start+wordSize])
	remaining := uint64(len(w) - start - wordSize)
	if !length.IsUint64() || length.Uint64() > remaining {
		return nil, fmt.Errorf("%w: word %d payload length exceeds data", ErrMalformed, index)
	}

	payloadStart := start + wordSize
	payload := make([]byte, int(length.Uint64()))
	copy(payload, w[payloadStart:payloadStart+len(payload)])
	return payload, nil
}

func (w words) text(index int) (string, error) {
	payload, err := w.bytes(index)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: word %d is not valid utf-8", ErrMalformed, index)
	}
	return string(payload), nil
}
