package utils

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/okx/batchtransfer/transfer"
)

var (
	_ transfer.ChainClient = (*EthClient)(nil)
)

// EthClient wraps the ethereum client with the calls the dispatcher needs.
// SuggestGasPrice and PendingNonceAt come from the embedded client.
type EthClient struct {
	*ethclient.Client
	rpcClient *rpc.Client
	chainID   *big.Int
}

// createHTTPClient bounds every RPC round trip by timeout. A single
// keep-alive connection is enough since calls are sequential.
func createHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewEthClient dials rawURL and caches the chain id.
func NewEthClient(ctx context.Context, rawURL string, timeout time.Duration) (*EthClient, error) {
	rpcClient, err := rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(createHTTPClient(timeout)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rpc client: %w", err)
	}
	return NewEthClientFromRPC(ctx, rpcClient)
}

// NewEthClientFromRPC builds an EthClient on an existing connection. The
// connection is closed if the chain id cannot be fetched.
func NewEthClientFromRPC(ctx context.Context, rpcClient *rpc.Client) (*EthClient, error) {
	cli := ethclient.NewClient(rpcClient)

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	return &EthClient{
		Client:    cli,
		rpcClient: rpcClient,
		chainID:   chainID,
	}, nil
}

// CachedChainID returns the chain id queried when the client was created.
func (e *EthClient) CachedChainID() *big.Int {
	return new(big.Int).Set(e.chainID)
}

// BroadcastTx sends a signed transaction and returns the hash reported by
// the node.
func (e *EthClient) BroadcastTx(ctx context.Context, tx *types.Transaction) (ethcmn.Hash, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return ethcmn.Hash{}, fmt.Errorf("failed to marshal tx: %w", err)
	}

	var hash ethcmn.Hash
	if err := e.rpcClient.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(data)); err != nil {
		return ethcmn.Hash{}, err
	}
	return hash, nil
}
