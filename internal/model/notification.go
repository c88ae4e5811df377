package model

import (
	"strconv"
	"time"
)

// Notification is a finished ballot notification handed to delivery.
// It is built once per decoded event and never mutated afterwards.
type Notification struct {
	Event       BallotEvent     `json:"event"`
	Network     Network         `json:"network"`
	Endpoint    string          `json:"endpoint"`
	BlockNumber uint64          `json:"block_number"`
	Version     ContractVersion `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewNotification builds a Notification for a decoded event.
func NewNotification(event BallotEvent, network Network, endpoint string, generatedAt time.Time) Notification {
	return Notification{
		Event:       event,
		Network:     network,
		Endpoint:    endpoint,
		BlockNumber: event.BlockNumber,
		Version:     event.Version,
		GeneratedAt: generatedAt.UTC(),
	}
}

// Key identifies the ballot within its (network, version, contract type) scope.
func (n Notification) Key() string {
	return n.Network.String() + ":" + n.Version.String() + ":" + n.Event.Contract.String() + ":" + strconv.FormatUint(n.Event.BallotID, 10)
}
