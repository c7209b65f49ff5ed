// Package batch wires configuration, the recipient file, the node client
// and the reporter around the transfer dispatcher.
package batch

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okx/batchtransfer/transfer"
	"github.com/okx/batchtransfer/utils"
)

// Result summarises a finished run.
type Result struct {
	RunID     string
	Sender    string
	Outcomes  []transfer.Outcome
	Succeeded int
	Failed    int
}

// Check loads and validates the recipient file without touching the network.
func Check(path string) ([]transfer.Recipient, error) {
	recipients, err := utils.LoadRecipients(path)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in %s", path)
	}
	if err := transfer.Validate(recipients); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return recipients, nil
}

// Send validates the whole recipient list, then dials the node and sends
// one transfer per recipient. Validation errors are returned before any
// connection is made.
func Send(ctx context.Context, cfg *utils.TransferConfig, logger log.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	recipients, err := Check(cfg.RecipientsFile)
	if err != nil {
		return nil, err
	}
	privateKey, err := utils.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	cli, err := utils.NewEthClient(ctx, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	return execute(ctx, cfg, cli, cli.CachedChainID(), privateKey, recipients, logger)
}

func execute(ctx context.Context, cfg *utils.TransferConfig, client transfer.ChainClient, chainID *big.Int,
	privateKey *ecdsa.PrivateKey, recipients []transfer.Recipient, logger log.Logger) (*Result, error) {
	if len(recipients) == 0 {
		return nil, errors.New("no recipients")
	}

	runID := uuid.NewString()
	logger = logger.New("run", runID)
	sender := transfer.NewSender(privateKey, chainID)

	reporter, err := utils.OpenReporter(logger, runID, cfg.ReportFile, cfg.FailedFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			logger.Warn("Failed to close report files", "err", err)
		}
	}()

	opts := []transfer.Option{
		transfer.WithLogger(logger),
		transfer.WithReporter(reporter.Record),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, transfer.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}
	fees := transfer.NewFeeEstimator(client, cfg.GasPriceMultiplier)
	dispatcher := transfer.NewDispatcher(client, fees, cfg.GasLimit, opts...)

	logger.Info("Starting batch transfer", "sender", sender.Address(), "chainId", chainID,
		"recipients", len(recipients), "gasLimit", cfg.GasLimit, "gasPriceMultiplier", fees.Multiplier())

	outcomes := dispatcher.Run(ctx, sender, recipients)

	total, succeeded, failed := reporter.Summary()
	logger.Info("Batch transfer finished", "total", total, "succeeded", succeeded, "failed", failed)
	if failed > 0 && cfg.FailedFile != "" {
		logger.Info("Failed entries written for a retry run", "path", cfg.FailedFile)
	}

	return &Result{
		RunID:     runID,
		Sender:    sender.Address().Hex(),
		Outcomes:  outcomes,
		Succeeded: succeeded,
		Failed:    failed,
	}, nil
}
