package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orbitrollup/batch-submitter/chain"
	"github.com/orbitrollup/batch-submitter/metrics"
)

// reconcileResubmissionTimeout is the fixed resubmission timeout used
// while clearing stale pending transactions at startup. Startup clearing
// does not reuse the configured batch timeout.
const reconcileResubmissionTimeout = 60 * time.Second

// nonceWindow is the [latest, pending) nonce interval observed at startup.
type nonceWindow struct {
	latest  uint64
	pending uint64
}

func (w nonceWindow) gap() uint64 {
	return w.pending - w.latest
}

// NonceReconciler clears the gap between the latest and pending nonces
// of the submitter account before any batch work starts. Each nonce in
// the gap is consumed with a zero-value self-transfer that is driven to
// confirmation before the next one is sent.
type NonceReconciler struct {
	wallet chain.Wallet
	waiter chain.ConfirmationWaiter

	numConfirmations uint64

	metrics *metrics.SubmitterMetrics
	logger  *zap.Logger
}

func NewNonceReconciler(
	wallet chain.Wallet,
	waiter chain.ConfirmationWaiter,
	numConfirmations uint64,
	m *metrics.SubmitterMetrics,
	logger *zap.Logger,
) *NonceReconciler {
	return &NonceReconciler{
		wallet:           wallet,
		waiter:           waiter,
		numConfirmations: numConfirmations,
		metrics:          m,
		logger:           logger,
	}
}

// Reconcile reads the nonce window of the submitter account and clears
// every nonce in it, lowest first. Any failure is returned to the caller
// and must abort startup, as proceeding with stale pending transactions
// would race the batch submitters on nonce assignment.
func (nr *NonceReconciler) Reconcile(ctx context.Context) error {
	window, err := nr.readNonceWindow(ctx)
	if err != nil {
		return err
	}

	if window.pending < window.latest {
		return fmt.Errorf("%w: latest %d, pending %d", ErrNonceWindowInverted, window.latest, window.pending)
	}

	if window.gap() == 0 {
		nr.logger.Info("no pending transactions to clear", zap.Uint64("nonce", window.latest))

		return nil
	}

	nr.logger.Info(
		"clearing pending transactions",
		zap.Uint64("latest_nonce", window.latest),
		zap.Uint64("pending_nonce", window.pending),
		zap.Uint64("gap", window.gap()),
	)

	for nonce := window.latest; nonce < window.pending; nonce++ {
		if err := nr.clearNonce(ctx, nonce); err != nil {
			return fmt.Errorf("failed to clear nonce %d: %w", nonce, err)
		}

		nr.metrics.IncrementClearedNonces()
		nr.logger.Info("cleared nonce", zap.Uint64("nonce", nonce))
	}

	nr.logger.Info("cleared all pending transactions", zap.Uint64("count", window.gap()))

	return nil
}

func (nr *NonceReconciler) readNonceWindow(ctx context.Context) (nonceWindow, error) {
	latest, err := nr.wallet.LatestNonce(ctx)
	if err != nil {
		return nonceWindow{}, fmt.Errorf("failed to query latest nonce: %w", err)
	}

	pending, err := nr.wallet.PendingNonce(ctx)
	if err != nil {
		return nonceWindow{}, fmt.Errorf("failed to query pending nonce: %w", err)
	}

	return nonceWindow{latest: latest, pending: pending}, nil
}

func (nr *NonceReconciler) clearNonce(ctx context.Context, nonce uint64) error {
	tx, err := nr.wallet.SelfTransfer(ctx, nonce)
	if err != nil {
		return fmt.Errorf("failed to build self-transfer: %w", err)
	}

	if err := nr.wallet.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to send self-transfer: %w", err)
	}

	if _, err := nr.waiter.AwaitWithResubmission(
		ctx, tx, nil, nr.numConfirmations, reconcileResubmissionTimeout,
	); err != nil {
		return fmt.Errorf("failed to confirm self-transfer: %w", err)
	}

	return nil
}
