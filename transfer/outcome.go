package transfer

import (
	"fmt"

	ethcmn "github.com/ethereum/go-ethereum/common"
)

// State is a recipient's position in the dispatch state machine.
type State int

const (
	StatePending State = iota
	StateNonceFetched
	StateFeeEstimated
	StateBuilt
	StateSigned
	StateBroadcast
	StateSucceeded
	StateRejected
)

var stateNames = [...]string{
	StatePending:      "pending",
	StateNonceFetched: "nonce-fetched",
	StateFeeEstimated: "fee-estimated",
	StateBuilt:        "built",
	StateSigned:       "signed",
	StateBroadcast:    "broadcast",
	StateSucceeded:    "succeeded",
	StateRejected:     "rejected",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the final result for one recipient. Err is nil on success.
type Outcome struct {
	Index     int
	Recipient Recipient
	From      ethcmn.Address
	// Request is set once the transaction was built.
	Request *TxRequest
	Hash    ethcmn.Hash
	State   State
	Err     *TxError
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.State == StateSucceeded
}

func (o Outcome) reject(kind ErrorKind, err error) Outcome {
	o.Err = &TxError{Kind: kind, Stage: o.State, Err: err}
	o.State = StateRejected
	return o
}
