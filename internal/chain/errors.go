package chain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrNetwork marks transport failures: refused connections, timeouts, non-2xx responses.
	ErrNetwork = errors.New("chain network error")
	// ErrRPC marks responses the node returned but that could not be used.
	ErrRPC = errors.New("chain rpc error")
)

// classify wraps err with ErrRPC or ErrNetwork.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		rpcErr    rpc.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &rpcErr), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fmt.Errorf("%s: %w: %w", op, ErrRPC, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}
}
