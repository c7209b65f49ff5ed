package transfer

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testChainID = big.NewInt(196)

// fakeClient serves scripted responses and records every call in order.
type fakeClient struct {
	nonces       []uint64
	prices       []*big.Int
	nonceErrs    map[int]error
	priceErrs    map[int]error
	broadcastErr map[int]error
	hashes       []ethcmn.Hash

	calls []string
	sent  []*types.Transaction

	nonceCalls, priceCalls, broadcastCalls int
}

func (f *fakeClient) PendingNonceAt(_ context.Context, _ ethcmn.Address) (uint64, error) {
	i := f.nonceCalls
	f.nonceCalls++
	f.calls = append(f.calls, "nonce")
	if err := f.nonceErrs[i]; err != nil {
		return 0, err
	}
	return f.nonces[i%len(f.nonces)], nil
}

func (f *fakeClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	i := f.priceCalls
	f.priceCalls++
	f.calls = append(f.calls, "price")
	if err := f.priceErrs[i]; err != nil {
		return nil, err
	}
	return new(big.Int).Set(f.prices[i%len(f.prices)]), nil
}

func (f *fakeClient) BroadcastTx(_ context.Context, tx *types.Transaction) (ethcmn.Hash, error) {
	i := f.broadcastCalls
	f.broadcastCalls++
	f.calls = append(f.calls, "broadcast")
	f.sent = append(f.sent, tx)
	if err := f.broadcastErr[i]; err != nil {
		return ethcmn.Hash{}, err
	}
	if i < len(f.hashes) {
		return f.hashes[i], nil
	}
	return tx.Hash(), nil
}

func (f *fakeClient) totalCalls() int {
	return len(f.calls)
}

// rpcError mimics a JSON-RPC error object returned by a node.
type rpcError struct {
	code int
	msg  string
}

func (e rpcError) Error() string  { return e.msg }
func (e rpcError) ErrorCode() int { return e.code }

var errConnRefused = errors.New("dial tcp 127.0.0.1:8545: connect: connection refused")

func newTestSender(t *testing.T) *Sender {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return NewSender(key, testChainID)
}

func testAddress(last string) string {
	return "0x" + strings.Repeat("a", 40-len(last)) + last
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func requireBig(t *testing.T, want, got *big.Int) {
	t.Helper()
	require.NotNil(t, got)
	require.Truef(t, want.Cmp(got) == 0, "want %s, got %s", want, got)
}
