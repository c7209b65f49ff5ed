package transfer

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainClient is the subset of node RPC the dispatcher needs.
type ChainClient interface {
	GasPricer
	PendingNonceAt(ctx context.Context, account ethcmn.Address) (uint64, error)
	BroadcastTx(ctx context.Context, tx *types.Transaction) (ethcmn.Hash, error)
}

// GasPricer returns the network-suggested legacy gas price in wei.
type GasPricer interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Recipient is one line of the recipient list. Amount is in wei.
type Recipient struct {
	Address string
	Amount  *big.Int
}

// TxRequest is a fully specified, unsigned transfer.
type TxRequest struct {
	From     ethcmn.Address
	To       ethcmn.Address
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
}

// Transaction converts the request into an unsigned legacy transaction.
func (r TxRequest) Transaction() *types.Transaction {
	to := r.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    r.Nonce,
		GasPrice: r.GasPrice,
		Gas:      r.GasLimit,
		To:       &to,
		Value:    r.Value,
	})
}

// Sender is the funded account every transfer is sent from.
type Sender struct {
	address    ethcmn.Address
	privateKey *ecdsa.PrivateKey
	signer     types.Signer
}

func NewSender(privateKey *ecdsa.PrivateKey, chainID *big.Int) *Sender {
	return &Sender{
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		privateKey: privateKey,
		signer:     types.NewLondonSigner(chainID),
	}
}

func (s *Sender) Address() ethcmn.Address {
	return s.address
}

// Sign signs tx with the sender key.
func (s *Sender) Sign(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, s.signer, s.privateKey)
}
