package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/orbitrollup/batch-submitter/metrics"
)

var _ ConfirmationWaiter = (*TxWaiter)(nil)

// TxWaiter polls for a receipt of any attempt of a logical send and
// rebroadcasts a fee-bumped replacement at the same nonce whenever the
// resubmission timeout elapses. The attempt list is append-only for the life
// of one wait and discarded when the wait returns.
type TxWaiter struct {
	client         EthClient
	wallet         Wallet
	queryInterval  time.Duration
	feeBumpPercent uint64
	metrics        *metrics.SubmitterMetrics
	logger         *zap.Logger
}

func NewTxWaiter(
	client EthClient,
	wallet Wallet,
	queryInterval time.Duration,
	feeBumpPercent uint64,
	submitterMetrics *metrics.SubmitterMetrics,
	logger *zap.Logger,
) *TxWaiter {
	return &TxWaiter{
		client:         client,
		wallet:         wallet,
		queryInterval:  queryInterval,
		feeBumpPercent: feeBumpPercent,
		metrics:        submitterMetrics,
		logger:         logger,
	}
}

func (w *TxWaiter) AwaitWithResubmission(
	ctx context.Context,
	tx *ethtypes.Transaction,
	prior []*ethtypes.Transaction,
	numConfirmations uint64,
	resubmissionTimeout time.Duration,
) (*ethtypes.Receipt, error) {
	attempts := make([]*ethtypes.Transaction, 0, len(prior)+1)
	attempts = append(attempts, prior...)
	attempts = append(attempts, tx)

	queryTicker := time.NewTicker(w.queryInterval)
	defer queryTicker.Stop()

	resubmitTimer := time.NewTimer(resubmissionTimeout)
	defer resubmitTimer.Stop()

	for {
		receipt, err := w.confirmedReceipt(ctx, attempts, numConfirmations)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			w.logger.Debug(
				"the transaction is confirmed",
				zap.String("tx_hash", receipt.TxHash.Hex()),
				zap.Uint64("block", receipt.BlockNumber.Uint64()),
				zap.Int("attempts", len(attempts)),
			)

			return receipt, nil
		}

		select {
		case <-queryTicker.C:
		case <-resubmitTimer.C:
			replacement, err := w.resubmit(ctx, attempts[len(attempts)-1])
			if err != nil {
				return nil, err
			}
			if replacement != nil {
				attempts = append(attempts, replacement)
				w.metrics.IncrementResubmissions()
			}
			resubmitTimer.Reset(resubmissionTimeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// confirmedReceipt returns the receipt of the first attempt that has reached
// the required confirmation depth, most recent attempt first. A prior attempt
// may confirm after it was superseded; its receipt is just as final.
func (w *TxWaiter) confirmedReceipt(
	ctx context.Context,
	attempts []*ethtypes.Transaction,
	numConfirmations uint64,
) (*ethtypes.Receipt, error) {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query the chain head: %w", err)
	}

	for i := len(attempts) - 1; i >= 0; i-- {
		receipt, err := w.client.TransactionReceipt(ctx, attempts[i].Hash())
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue
			}

			return nil, fmt.Errorf("failed to query the receipt of %s: %w", attempts[i].Hash().Hex(), err)
		}
		if receipt == nil || receipt.BlockNumber == nil {
			continue
		}

		if confirmationDepth(head, receipt.BlockNumber.Uint64()) >= numConfirmations {
			return receipt, nil
		}
	}

	return nil, nil
}

// resubmit broadcasts a replacement of the last attempt with a bumped gas
// price. A nil replacement with a nil error means the nonce has been used up
// in the meantime and some attempt is already mined.
func (w *TxWaiter) resubmit(ctx context.Context, last *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	gasPrice := bumpGasPrice(last.GasPrice(), w.feeBumpPercent)
	if suggested, err := w.client.SuggestGasPrice(ctx); err == nil && suggested.Cmp(gasPrice) > 0 {
		gasPrice = suggested
	}

	replacement := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    last.Nonce(),
		To:       last.To(),
		Value:    last.Value(),
		Gas:      last.Gas(),
		GasPrice: gasPrice,
		Data:     last.Data(),
	})

	signed, err := w.wallet.SignTx(replacement)
	if err != nil {
		return nil, fmt.Errorf("failed to sign the replacement transaction: %w", err)
	}

	w.logger.Info(
		"the transaction did not confirm in time, resubmitting with a bumped fee",
		zap.Uint64("nonce", last.Nonce()),
		zap.String("prev_gas_price", last.GasPrice().String()),
		zap.String("gas_price", gasPrice.String()),
		zap.String("tx_hash", signed.Hash().Hex()),
	)

	if err := w.wallet.SendTransaction(ctx, signed); err != nil {
		if IsNonceTooLow(err) {
			w.logger.Debug(
				"the nonce is already used up, an earlier attempt has been mined",
				zap.Uint64("nonce", last.Nonce()),
			)

			return nil, nil
		}

		return nil, fmt.Errorf("failed to broadcast the replacement transaction: %w", err)
	}

	return signed, nil
}

func confirmationDepth(head, minedAt uint64) uint64 {
	if head < minedAt {
		return 0
	}

	return head - minedAt + 1
}

func bumpGasPrice(prev *big.Int, percent uint64) *big.Int {
	bumped := new(big.Int).Mul(prev, new(big.Int).SetUint64(100+percent))
	bumped.Div(bumped, big.NewInt(100))
	if bumped.Cmp(prev) <= 0 {
		bumped = new(big.Int).Add(prev, big.NewInt(1))
	}

	return bumped
}
