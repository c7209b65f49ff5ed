package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// ValidationError reports the first malformed recipient entry.
type ValidationError struct {
	Index   int
	Address string
	Amount  *big.Int
	Rule    error // ErrInvalidAddress or ErrInvalidAmount
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Rule, ErrInvalidAddress) {
		return fmt.Sprintf("entry %d: %v: %q", e.Index, e.Rule, e.Address)
	}
	return fmt.Sprintf("entry %d: %v for %s: %s", e.Index, e.Rule, e.Address, amountString(e.Amount))
}

func (e *ValidationError) Unwrap() error {
	return e.Rule
}

func amountString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// ErrorKind classifies a per-recipient failure.
type ErrorKind int

const (
	ErrKindRPCUnavailable ErrorKind = iota + 1
	ErrKindUnderpriced
	ErrKindGenericRejection
	// ErrKindAborted marks entries never attempted because the run was cancelled.
	ErrKindAborted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindRPCUnavailable:
		return "rpc-unavailable"
	case ErrKindUnderpriced:
		return "underpriced"
	case ErrKindGenericRejection:
		return "rejected"
	case ErrKindAborted:
		return "aborted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TxError is the failure attached to a rejected Outcome. Stage is the last
// state the recipient reached before the failing step.
type TxError struct {
	Kind  ErrorKind
	Stage State
	Err   error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s after %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// classifyBroadcast maps an eth_sendRawTransaction failure onto an ErrorKind.
// Node-side rejections arrive as rpc.Error; transport failures do not.
func classifyBroadcast(err error) ErrorKind {
	if isUnderpriced(err) {
		return ErrKindUnderpriced
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return ErrKindGenericRejection
	}
	if isUnavailable(err) {
		return ErrKindRPCUnavailable
	}
	return ErrKindGenericRejection
}

// isUnderpriced matches both "transaction underpriced" and
// "replacement transaction underpriced" from the geth txpool.
func isUnderpriced(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "underpriced")
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, rpc.ErrClientQuit) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr rpc.HTTPError
	return errors.As(err, &httpErr)
}
