package ballot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"poagov/internal/model"
)

const ballotCreatedEvent = "BallotCreated"

const keysV1ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "affectedKey", "type": "address"},
      {"indexed": false, "internalType": "uint8", "name": "affectedKeyType", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "ballotType", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const thresholdV1ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "proposedValue", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const proxyV1ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "proposedValue", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "contractType", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const keysV2ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "affectedKey", "type": "address"},
      {"indexed": false, "internalType": "uint8", "name": "affectedKeyType", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "ballotType", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "newVotingKey", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "newPayoutKey", "type": "address"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const thresholdV2ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "proposedValue", "type": "uint256"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const proxyV2ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "proposedValue", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "contractType", "type": "uint256"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

const emissionV2ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "memo", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "startTime", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "endTime", "type": "uint256"},
      {"indexed": false, "internalType": "string", "name": "payload", "type": "string"}
    ],
    "name": "BallotCreated",
    "type": "event"
  }
]`

var eventABIJSON = map[Key]string{
	{Type: model.ContractKeys, Version: model.V1}:          keysV1ABIJSON,
	{Type: model.ContractThreshold, Version: model.V1}:     thresholdV1ABIJSON,
	{Type: model.ContractProxy, Version: model.V1}:         proxyV1ABIJSON,
	{Type: model.ContractKeys, Version: model.V2}:          keysV2ABIJSON,
	{Type: model.ContractThreshold, Version: model.V2}:     thresholdV2ABIJSON,
	{Type: model.ContractProxy, Version: model.V2}:         proxyV2ABIJSON,
	{Type: model.ContractEmissionFunds, Version: model.V2}: emissionV2ABIJSON,
}

var (
	ballotEvents     map[Key]abi.Event
	ballotEventsOnce sync.Once
	ballotEventsErr  error
)

// BallotCreatedEvent returns the parsed BallotCreated event for a contract type and version.
func BallotCreatedEvent(key Key) (abi.Event, error) {
	ballotEventsOnce.Do(func() {
		ballotEvents = make(map[Key]abi.Event, len(eventABIJSON))
		for k, raw := range eventABIJSON {
			parsed, err := abi.JSON(strings.NewReader(raw))
			if err != nil {
				ballotEventsErr = fmt.Errorf("parse %s abi: %w", k, err)
				return
			}
			ballotEvents[k] = parsed.Events[ballotCreatedEvent]
		}
	})
	if ballotEventsErr != nil {
		return abi.Event{}, ballotEventsErr
	}
	event, ok := ballotEvents[key]
	if !ok {
		return abi.Event{}, fmt.Errorf("%w: %s", ErrUnsupported, key)
	}
	return event, nil
}
