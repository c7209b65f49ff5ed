package transfer

import (
	"math/big"

	ethcmn "github.com/ethereum/go-ethereum/common"
)

// Build assembles the request for one recipient. Inputs are assumed to be
// validated already.
func Build(from ethcmn.Address, r Recipient, nonce, gasLimit uint64, gasPrice *big.Int) TxRequest {
	return TxRequest{
		From:     from,
		To:       ethcmn.HexToAddress(r.Address),
		Value:    new(big.Int).Set(r.Amount),
		GasLimit: gasLimit,
		GasPrice: new(big.Int).Set(gasPrice),
		Nonce:    nonce,
	}
}
