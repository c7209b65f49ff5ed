// Package nodetest runs a minimal in-process JSON-RPC node for tests. It
// serves eth_chainId, eth_gasPrice, eth_getTransactionCount and
// eth_sendRawTransaction and tracks account nonces for accepted transfers.
package nodetest

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Node is a fake chain node. Reject, if set, is consulted for every
// incoming transaction before the nonce check.
type Node struct {
	Reject func(tx *types.Transaction) error

	mu       sync.Mutex
	chainID  *big.Int
	gasPrice *big.Int
	nonces   map[ethcmn.Address]uint64
	accepted []*types.Transaction
	calls    []string

	server *rpc.Server
}

func New(chainID, gasPrice *big.Int) *Node {
	n := &Node{
		chainID:  chainID,
		gasPrice: gasPrice,
		nonces:   make(map[ethcmn.Address]uint64),
		server:   rpc.NewServer(),
	}
	if err := n.server.RegisterName("eth", &ethAPI{n: n}); err != nil {
		panic(err)
	}
	return n
}

// Dial returns a client connected to the node in-process.
func (n *Node) Dial() *rpc.Client {
	return rpc.DialInProc(n.server)
}

// Handler exposes the node over HTTP, e.g. through httptest.NewServer.
func (n *Node) Handler() http.Handler {
	return n.server
}

func (n *Node) Close() {
	n.server.Stop()
}

func (n *Node) SetGasPrice(price *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gasPrice = price
}

func (n *Node) SetNonce(addr ethcmn.Address, nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nonces[addr] = nonce
}

// Accepted returns the transactions taken into the pool, in arrival order.
func (n *Node) Accepted() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.accepted...)
}

// Calls returns the served RPC method names, in order.
func (n *Node) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *Node) record(method string) {
	n.calls = append(n.calls, method)
}

type ethAPI struct {
	n *Node
}

func (api *ethAPI) ChainId() *hexutil.Big {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.record("eth_chainId")
	return (*hexutil.Big)(api.n.chainID)
}

func (api *ethAPI) GasPrice() *hexutil.Big {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.record("eth_gasPrice")
	return (*hexutil.Big)(new(big.Int).Set(api.n.gasPrice))
}

func (api *ethAPI) GetTransactionCount(addr ethcmn.Address, block string) (hexutil.Uint64, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.record("eth_getTransactionCount")
	if block != "pending" && block != "latest" {
		return 0, fmt.Errorf("unsupported block tag %q", block)
	}
	return hexutil.Uint64(api.n.nonces[addr]), nil
}

func (api *ethAPI) SendRawTransaction(input hexutil.Bytes) (ethcmn.Hash, error) {
	n := api.n
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("eth_sendRawTransaction")

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return ethcmn.Hash{}, err
	}
	if n.Reject != nil {
		if err := n.Reject(tx); err != nil {
			return ethcmn.Hash{}, err
		}
	}
	from, err := types.Sender(types.LatestSignerForChainID(n.chainID), tx)
	if err != nil {
		return ethcmn.Hash{}, fmt.Errorf("invalid sender: %v", err)
	}
	switch want := n.nonces[from]; {
	case tx.Nonce() < want:
		return ethcmn.Hash{}, errors.New("nonce too low")
	case tx.Nonce() > want:
		return ethcmn.Hash{}, errors.New("nonce too high")
	}
	n.nonces[from]++
	n.accepted = append(n.accepted, tx)
	return tx.Hash(), nil
}
