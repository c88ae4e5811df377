package ballot

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"

	"poagov/internal/model"
)

// parseEmissionPayload parses the JSON text carried by an emission-funds ballot:
//
//	{"amount":"1000000000000000000","receiver":"0x...","action":"send"}
func parseEmissionPayload(text string) (model.EmissionProposal, error) {
	if !gjson.Valid(text) {
		return model.EmissionProposal{}, fmt.Errorf("%w: emission payload is not valid json", ErrMalformed)
	}

	res := gjson.GetMany(text, "amount", "receiver", "action")
	amountRes, receiverRes, actionRes := res[0], res[1], res[2]

	if amountRes.Type != gjson.String {
		return model.EmissionProposal{}, fmt.Errorf("%w: emission amount must be a decimal string", ErrMalformed)
	}
	amount, ok := new(big.Int).SetString(amountRes.String(), 10)
	if !ok || amount.Sign() < 0 {
		return model.EmissionProposal{}, fmt.Errorf("%w: invalid emission amount %q", ErrMalformed, amountRes.String())
	}

	receiver := receiverRes.String()
	if !common.IsHexAddress(receiver) {
		return model.EmissionProposal{}, fmt.Errorf("%w: invalid emission receiver %q", ErrMalformed, receiver)
	}

	action := model.EmissionAction(actionRes.String())
	switch action {
	case model.EmissionSend, model.EmissionBurn, model.EmissionFreeze:
	default:
		return model.EmissionProposal{}, fmt.Errorf("%w: unknown emission action %q", ErrMalformed, actionRes.String())
	}

	return model.EmissionProposal{
		Amount:   amount,
		Receiver: common.HexToAddress(receiver),
		Action:   action,
	}, nil
}
