package ballot

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func checkLayout(key Key, l layout, inputs abi.Arguments) error {
	if len(inputs) != len(l.fields) {
		return fmt.Errorf("layout %s: %d fields, abi has %d inputs", key, len(l.fields), len(inputs))
	}
	for i, f := range l.fields {
		if f.word != i {
			return fmt.Errorf("layout %s: field %s at word %d, want %d", key, f.name, f.word, i)
		}
		if inputs[i].Name != f.name {
			return fmt.Errorf("layout %s: word %d is %s in abi, %s in layout", key, i, inputs[i].Name, f.name)
		}
		if !kindMatches(f.kind, inputs[i].Type) {
			return fmt.Errorf("layout %s: field %s has abi type %s", key, f.name, inputs[i].Type.String())
		}
	}
	for _, name := range []string{fieldID, fieldStartTime, fieldEndTime} {
		if !l.has(name) {
			return fmt.Errorf("layout %s: missing %s", key, name)
		}
	}
	return nil
}

func kindMatches(kind fieldKind, t abi.Type) bool {
	switch kind {
	case kindUint64, kindTime:
		return t.T == abi.UintTy && t.Size == 256
	case kindUint8:
		return t.T == abi.UintTy && t.Size == 8
	case kindAddress:
		return t.T == abi.AddressTy
	case kindText:
		return t.T == abi.StringTy
	default:
		return false
	}
}
