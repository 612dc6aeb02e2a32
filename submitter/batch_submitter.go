package submitter

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/orbitrollup/batch-submitter/chain"
	"github.com/orbitrollup/batch-submitter/types"
)

var _ types.Submitter = (*BatchSubmitter)(nil)

// BatchSubmitter submits batch payloads for a single role to its target
// contract and waits for them to confirm.
type BatchSubmitter struct {
	role     types.Role
	contract common.Address
	source   WorkSource
	wallet   chain.Wallet
	waiter   chain.ConfirmationWaiter

	numConfirmations    uint64
	resubmissionTimeout time.Duration

	logger *zap.Logger
}

func NewBatchSubmitter(
	role types.Role,
	contract common.Address,
	source WorkSource,
	wallet chain.Wallet,
	waiter chain.ConfirmationWaiter,
	numConfirmations uint64,
	resubmissionTimeout time.Duration,
	logger *zap.Logger,
) *BatchSubmitter {
	return &BatchSubmitter{
		role:                role,
		contract:            contract,
		source:              source,
		wallet:              wallet,
		waiter:              waiter,
		numConfirmations:    numConfirmations,
		resubmissionTimeout: resubmissionTimeout,
		logger:              logger.With(zap.String("role", role.String())),
	}
}

// SubmitNextBatch pulls the next pending batch payload, submits it as a
// calldata transaction and waits until it is confirmed. It returns a nil
// receipt with a nil error when no batch is pending.
func (bs *BatchSubmitter) SubmitNextBatch(ctx context.Context) (*ethtypes.Receipt, error) {
	payload, err := bs.source.NextBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next batch: %w", err)
	}
	if payload == nil {
		bs.logger.Debug("no batch pending")

		return nil, nil
	}

	nonce, err := bs.wallet.PendingNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending nonce: %w", err)
	}

	tx, err := bs.wallet.CalldataTx(ctx, nonce, bs.contract, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build batch transaction: %w", err)
	}

	if err := bs.wallet.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send batch transaction: %w", err)
	}

	bs.logger.Info(
		"batch transaction sent",
		zap.Uint64("nonce", nonce),
		zap.Int("payload_size", len(payload)),
		zap.String("tx_hash", tx.Hash().Hex()),
	)

	receipt, err := bs.waiter.AwaitWithResubmission(ctx, tx, nil, bs.numConfirmations, bs.resubmissionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm batch transaction: %w", err)
	}

	return receipt, nil
}
