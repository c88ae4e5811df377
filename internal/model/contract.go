package model

import (
	"fmt"
	"strings"
)

// Network identifies a deployed governance network.
type Network int

const (
	NetworkCore Network = iota + 1
	NetworkSokol
	NetworkXDai
)

// Networks lists every supported network.
var Networks = []Network{NetworkCore, NetworkSokol, NetworkXDai}

func (n Network) String() string {
	switch n {
	case NetworkCore:
		return "core"
	case NetworkSokol:
		return "sokol"
	case NetworkXDai:
		return "xdai"
	default:
		return fmt.Sprintf("network(%d)", int(n))
	}
}

// SupportsVersion reports whether the network ever ran contracts of the given version.
func (n Network) SupportsVersion(v ContractVersion) bool {
	if n == NetworkXDai {
		return v == V2
	}
	return v == V1 || v == V2
}

// MarshalText encodes the network by name.
func (n Network) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// ParseNetwork parses a network name.
func ParseNetwork(input string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "core":
		return NetworkCore, nil
	case "sokol":
		return NetworkSokol, nil
	case "xdai":
		return NetworkXDai, nil
	default:
		return 0, fmt.Errorf("unsupported network: %q", input)
	}
}

// ContractVersion selects the hardfork-specific event layout.
type ContractVersion int

const (
	V1 ContractVersion = iota + 1
	V2
)

func (v ContractVersion) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("version(%d)", int(v))
	}
}

// MarshalText encodes the version by name.
func (v ContractVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseContractVersion parses "v1" or "v2".
func ParseContractVersion(input string) (ContractVersion, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	default:
		return 0, fmt.Errorf("unsupported contract version: %q", input)
	}
}

// ContractType identifies one of the governance ballot contracts.
// The numeric order is the scan order.
type ContractType int

const (
	ContractKeys ContractType = iota + 1
	ContractThreshold
	ContractProxy
	ContractEmissionFunds
)

// ContractTypes lists every contract type in scan order.
var ContractTypes = []ContractType{ContractKeys, ContractThreshold, ContractProxy, ContractEmissionFunds}

func (t ContractType) String() string {
	switch t {
	case ContractKeys:
		return "keys"
	case ContractThreshold:
		return "threshold"
	case ContractProxy:
		return "proxy"
	case ContractEmissionFunds:
		return "emission"
	default:
		return fmt.Sprintf("contract(%d)", int(t))
	}
}

// MarshalText encodes the contract type by name.
func (t ContractType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ContractName returns the Solidity source name of the voting contract.
func (t ContractType) ContractName() string {
	switch t {
	case ContractKeys:
		return "VotingToChangeKeys.sol"
	case ContractThreshold:
		return "VotingToChangeMinThreshold.sol"
	case ContractProxy:
		return "VotingToChangeProxyAddress.sol"
	case ContractEmissionFunds:
		return "VotingToManageEmissionFunds.sol"
	default:
		return ""
	}
}

// SupportsVersion reports whether a contract of this type exists under the given version.
func (t ContractType) SupportsVersion(v ContractVersion) bool {
	if t == ContractEmissionFunds {
		return v == V2
	}
	return v == V1 || v == V2
}

// ParseContractType parses a contract type name.
func ParseContractType(input string) (ContractType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "keys":
		return ContractKeys, nil
	case "threshold":
		return ContractThreshold, nil
	case "proxy":
		return ContractProxy, nil
	case "emission", "emission-funds", "emissionfunds":
		return ContractEmissionFunds, nil
	default:
		return 0, fmt.Errorf("unsupported contract type: %q", input)
	}
}
