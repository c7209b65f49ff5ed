package utils

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"github.com/okx/batchtransfer/transfer"
	"github.com/okx/batchtransfer/utils/nodetest"
)

func newTestEthClient(t *testing.T, node *nodetest.Node) *EthClient {
	t.Helper()
	cli, err := NewEthClientFromRPC(context.Background(), node.Dial())
	require.NoError(t, err)
	t.Cleanup(cli.Close)
	return cli
}

func TestEthClient(t *testing.T) {
	node := nodetest.New(big.NewInt(196), big.NewInt(1000))
	defer node.Close()
	cli := newTestEthClient(t, node)

	require.Equal(t, int64(196), cli.CachedChainID().Int64())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := transfer.NewSender(key, cli.CachedChainID())
	node.SetNonce(sender.Address(), 4)

	ctx := context.Background()
	price, err := cli.SuggestGasPrice(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1000), price.Int64())

	nonce, err := cli.PendingNonceAt(ctx, sender.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(4), nonce)

	req := transfer.Build(sender.Address(), transfer.Recipient{Address: testTo, Amount: big.NewInt(1)}, nonce, 21000, price)
	signed, err := sender.Sign(req.Transaction())
	require.NoError(t, err)

	hash, err := cli.BroadcastTx(ctx, signed)
	require.NoError(t, err)
	require.Equal(t, signed.Hash(), hash)
	require.Len(t, node.Accepted(), 1)

	// same nonce again
	_, err = cli.BroadcastTx(ctx, signed)
	var rpcErr rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Contains(t, err.Error(), "nonce too low")
}

func TestEthClientBroadcastRejected(t *testing.T) {
	node := nodetest.New(big.NewInt(196), big.NewInt(1000))
	defer node.Close()
	node.Reject = func(*types.Transaction) error {
		return errors.New("replacement transaction underpriced")
	}
	cli := newTestEthClient(t, node)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := transfer.NewSender(key, cli.CachedChainID())
	req := transfer.Build(sender.Address(), transfer.Recipient{Address: testTo, Amount: big.NewInt(1)}, 0, 21000, big.NewInt(1100))
	signed, err := sender.Sign(req.Transaction())
	require.NoError(t, err)

	_, err = cli.BroadcastTx(context.Background(), signed)
	require.ErrorContains(t, err, "underpriced")
	require.Empty(t, node.Accepted())
}

func TestNewEthClientClosedConnection(t *testing.T) {
	node := nodetest.New(big.NewInt(196), big.NewInt(1000))
	rpcClient := node.Dial()
	rpcClient.Close()
	node.Close()

	_, err := NewEthClientFromRPC(context.Background(), rpcClient)
	require.Error(t, err)
}
