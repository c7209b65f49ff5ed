package transfer

import (
	"context"
	"fmt"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/time/rate"
)

// Dispatcher sends one transfer per recipient, strictly in order. The nonce
// for entry N is fetched only after the broadcast of entry N-1 returned.
type Dispatcher struct {
	client   ChainClient
	fees     *FeeEstimator
	gasLimit uint64

	limiter  *rate.Limiter
	reporter func(Outcome)
	log      log.Logger
}

type Option func(*Dispatcher)

// WithReporter registers fn to receive every outcome as soon as it is final.
func WithReporter(fn func(Outcome)) Option {
	return func(d *Dispatcher) {
		d.reporter = fn
	}
}

// WithLimiter paces submissions. Sending stays sequential.
func WithLimiter(l *rate.Limiter) Option {
	return func(d *Dispatcher) {
		d.limiter = l
	}
}

func WithLogger(l log.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

func NewDispatcher(client ChainClient, fees *FeeEstimator, gasLimit uint64, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		fees:     fees,
		gasLimit: gasLimit,
		log:      log.Root(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run returns exactly one outcome per entry, in input order. Per-recipient
// failures never stop the batch. Once ctx is done the remaining entries are
// reported as aborted without touching the node.
func (d *Dispatcher) Run(ctx context.Context, sender *Sender, entries []Recipient) []Outcome {
	outcomes := make([]Outcome, 0, len(entries))
	for i, r := range entries {
		var out Outcome
		if err := d.wait(ctx); err != nil {
			out = Outcome{Index: i, Recipient: r, From: sender.Address()}.reject(ErrKindAborted, err)
		} else {
			out = d.send(ctx, sender, i, r)
		}
		outcomes = append(outcomes, out)
		if d.reporter != nil {
			d.reporter(out)
		}
	}
	return outcomes
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.limiter != nil {
		return d.limiter.Wait(ctx)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, sender *Sender, index int, r Recipient) Outcome {
	out := Outcome{Index: index, Recipient: r, From: sender.Address(), State: StatePending}

	nonce, err := d.client.PendingNonceAt(ctx, sender.Address())
	if err != nil {
		return out.reject(ErrKindRPCUnavailable, fmt.Errorf("failed to query nonce: %w", err))
	}
	out.State = StateNonceFetched

	gasPrice, err := d.fees.Estimate(ctx)
	if err != nil {
		return out.reject(ErrKindRPCUnavailable, fmt.Errorf("failed to get gas price: %w", err))
	}
	out.State = StateFeeEstimated

	req := Build(sender.Address(), r, nonce, d.gasLimit, gasPrice)
	out.Request = &req
	out.State = StateBuilt

	signedTx, err := sender.Sign(req.Transaction())
	if err != nil {
		return out.reject(ErrKindGenericRejection, fmt.Errorf("failed to sign tx: %w", err))
	}
	out.State = StateSigned

	d.log.Debug("Broadcasting transfer", "index", index, "to", req.To, "value", req.Value,
		"nonce", nonce, "gasPrice", gasPrice, "hash", signedTx.Hash())

	hash, err := d.client.BroadcastTx(ctx, signedTx)
	if err != nil {
		return out.reject(classifyBroadcast(err), err)
	}
	out.State = StateBroadcast
	if hash == (ethcmn.Hash{}) {
		hash = signedTx.Hash()
	}
	out.Hash = hash
	out.State = StateSucceeded
	return out
}
